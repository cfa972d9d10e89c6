package controllers

import (
	"net/http"

	"gmp-system/internal/services"
	"gmp-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TimelineController struct {
	timelineService services.TimelineServiceInterface
	logger          *zap.Logger
}

func NewTimelineController(timelineService services.TimelineServiceInterface, logger *zap.Logger) *TimelineController {
	return &TimelineController{timelineService: timelineService, logger: logger}
}

func (c *TimelineController) GetCaseTimeline(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.timelineService.GetCaseTimeline(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}
