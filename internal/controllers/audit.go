package controllers

import (
	"fmt"
	"net/http"
	"time"

	"gmp-system/internal/repositories"
	"gmp-system/internal/services"
	"gmp-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditController struct {
	auditService services.AuditServiceInterface
	logger       *zap.Logger
}

func NewAuditController(auditService services.AuditServiceInterface, logger *zap.Logger) *AuditController {
	return &AuditController{auditService: auditService, logger: logger}
}

func (c *AuditController) parseAuditFilter(ctx echo.Context) (repositories.AuditFilter, error) {
	filter := repositories.AuditFilter{
		List: utils.ParseFilterFromQuery(ctx.QueryParams()),
	}
	if from := ctx.QueryParam("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "некорректный 'date_from', ожидается YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}
	if to := ctx.QueryParam("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "некорректный 'date_to', ожидается YYYY-MM-DD")
		}
		// Верхняя граница включительно: конец суток.
		end := t.Add(24*time.Hour - time.Second)
		filter.DateTo = &end
	}
	return filter, nil
}

func (c *AuditController) List(ctx echo.Context) error {
	filter, err := c.parseAuditFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	list, total, err := c.auditService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := map[string]interface{}{"list": list}
	for k, v := range listMeta(total, filter.List) {
		body[k] = v
	}
	return utils.SuccessResponse(ctx, body, "Successfully", http.StatusOK)
}

func (c *AuditController) ExportXLSX(ctx echo.Context) error {
	filter, err := c.parseAuditFilter(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	file, err := c.auditService.ExportXLSX(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer file.Close()

	ctx.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, services.ExportFilename(filter)))
	ctx.Response().WriteHeader(http.StatusOK)

	return file.Write(ctx.Response().Writer)
}
