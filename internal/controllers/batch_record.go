package controllers

import (
	"net/http"
	"strconv"

	"gmp-system/internal/dto"
	"gmp-system/internal/services"
	"gmp-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BatchRecordController struct {
	batchRecordService services.BatchRecordServiceInterface
	logger             *zap.Logger
}

func NewBatchRecordController(batchRecordService services.BatchRecordServiceInterface, logger *zap.Logger) *BatchRecordController {
	return &BatchRecordController{batchRecordService: batchRecordService, logger: logger}
}

func (c *BatchRecordController) Create(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateBatchRecordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.batchRecordService.Create(ctx.Request().Context(), actorID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Досье серии заведено", http.StatusCreated)
}

func (c *BatchRecordController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	list, total, err := c.batchRecordService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := map[string]interface{}{"list": list}
	for k, v := range listMeta(total, filter) {
		body[k] = v
	}
	return utils.SuccessResponse(ctx, body, "Successfully", http.StatusOK)
}

func (c *BatchRecordController) GetByID(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.batchRecordService.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *BatchRecordController) Start(ctx echo.Context) error {
	return c.transition(ctx, nil, func(actorID, id uint64) (interface{}, error) {
		return c.batchRecordService.Start(ctx.Request().Context(), actorID, id)
	})
}

func (c *BatchRecordController) CompleteStep(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	caseID, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	stepID, err := strconv.ParseUint(ctx.Param("stepId"), 10, 64)
	if err != nil || stepID == 0 {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректный ID шага"), c.logger)
	}

	res, err := c.batchRecordService.CompleteStep(ctx.Request().Context(), actorID, caseID, stepID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Шаг выполнен", http.StatusOK)
}

func (c *BatchRecordController) SubmitReview(ctx echo.Context) error {
	var payload struct {
		Comment string `json:"comment"`
	}
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, nil, func(actorID, id uint64) (interface{}, error) {
		return c.batchRecordService.SubmitReview(ctx.Request().Context(), actorID, id, payload.Comment)
	})
}

func (c *BatchRecordController) Review(ctx echo.Context) error {
	var payload dto.SignActionDTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.batchRecordService.Review(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *BatchRecordController) Approve(ctx echo.Context) error {
	var payload dto.SignActionDTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.batchRecordService.Approve(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *BatchRecordController) Reject(ctx echo.Context) error {
	var payload dto.SignActionDTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.batchRecordService.Reject(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *BatchRecordController) transition(ctx echo.Context, payload interface{}, call func(actorID, id uint64) (interface{}, error)) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if payload != nil {
		if err := ctx.Bind(payload); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		if err := ctx.Validate(payload); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}

	res, err := call(actorID, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Переход выполнен", http.StatusOK)
}
