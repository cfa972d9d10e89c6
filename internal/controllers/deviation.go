package controllers

import (
	"net/http"

	"gmp-system/internal/dto"
	"gmp-system/internal/services"
	"gmp-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DeviationController struct {
	deviationService services.DeviationServiceInterface
	logger           *zap.Logger
}

func NewDeviationController(deviationService services.DeviationServiceInterface, logger *zap.Logger) *DeviationController {
	return &DeviationController{deviationService: deviationService, logger: logger}
}

func (c *DeviationController) Create(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateDeviationDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.deviationService.Create(ctx.Request().Context(), actorID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отклонение зарегистрировано", http.StatusCreated)
}

func (c *DeviationController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	list, total, err := c.deviationService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := map[string]interface{}{"list": list}
	for k, v := range listMeta(total, filter) {
		body[k] = v
	}
	return utils.SuccessResponse(ctx, body, "Successfully", http.StatusOK)
}

func (c *DeviationController) GetByID(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.deviationService.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *DeviationController) StartInvestigation(ctx echo.Context) error {
	return c.transition(ctx, nil, func(actorID, id uint64) (interface{}, error) {
		return c.deviationService.StartInvestigation(ctx.Request().Context(), actorID, id)
	})
}

func (c *DeviationController) ProposeCAPA(ctx echo.Context) error {
	var payload dto.DeviationProposeCAPADTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.deviationService.ProposeCAPA(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *DeviationController) Approve(ctx echo.Context) error {
	var payload dto.SignActionDTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.deviationService.Approve(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *DeviationController) StartImplementation(ctx echo.Context) error {
	return c.transition(ctx, nil, func(actorID, id uint64) (interface{}, error) {
		return c.deviationService.StartImplementation(ctx.Request().Context(), actorID, id)
	})
}

func (c *DeviationController) Close(ctx echo.Context) error {
	var payload dto.CloseDeviationDTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.deviationService.Close(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *DeviationController) transition(ctx echo.Context, payload interface{}, call func(actorID, id uint64) (interface{}, error)) error {
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
