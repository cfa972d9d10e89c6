package controllers

import (
	"net/http"
	"strconv"

	"gmp-system/internal/dto"
	"gmp-system/internal/services"
	"gmp-system/pkg/types"
	"gmp-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OOSController struct {
	oosService services.OOSServiceInterface
	logger     *zap.Logger
}

func NewOOSController(oosService services.OOSServiceInterface, logger *zap.Logger) *OOSController {
	return &OOSController{oosService: oosService, logger: logger}
}

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "некорректный ID")
	}
	return id, nil
}

func listMeta(total uint64, filter types.Filter) map[string]interface{} {
	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int((total + uint64(filter.Limit) - 1) / uint64(filter.Limit))
	}
	return map[string]interface{}{
		"pagination": types.Pagination{
			TotalCount: total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	}
}

func (c *OOSController) Create(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateOOSCaseDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.oosService.Create(ctx.Request().Context(), actorID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "OOS-расследование заведено", http.StatusCreated)
}

func (c *OOSController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	list, total, err := c.oosService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := map[string]interface{}{"list": list}
	for k, v := range listMeta(total, filter) {
		body[k] = v
	}
	return utils.SuccessResponse(ctx, body, "Successfully", http.StatusOK)
}

func (c *OOSController) GetByID(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.oosService.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *OOSController) StartPhase1(ctx echo.Context) error {
	var payload dto.StartPhase1DTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.StartPhase1(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *OOSController) CompletePhase1(ctx echo.Context) error {
	var payload dto.CompletePhase1DTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.CompletePhase1(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *OOSController) StartPhase2(ctx echo.Context) error {
	return c.transition(ctx, nil, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.StartPhase2(ctx.Request().Context(), actorID, id)
	})
}

func (c *OOSController) CompletePhase2(ctx echo.Context) error {
	var payload dto.CompletePhase2DTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.CompletePhase2(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *OOSController) ProposeCAPA(ctx echo.Context) error {
	var payload dto.ProposeCAPADTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.ProposeCAPA(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *OOSController) ApproveCAPA(ctx echo.Context) error {
	var payload dto.ApproveCAPADTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.ApproveCAPA(ctx.Request().Context(), actorID, id, payload)
	})
}

func (c *OOSController) StartImplementation(ctx echo.Context) error {
	return c.transition(ctx, nil, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.StartImplementation(ctx.Request().Context(), actorID, id)
	})
}

func (c *OOSController) Close(ctx echo.Context) error {
	var payload dto.CloseOOSDTO
	return c.transition(ctx, &payload, func(actorID, id uint64) (interface{}, error) {
		return c.oosService.Close(ctx.Request().Context(), actorID, id, payload)
	})
}

// transition - общий каркас обработчика перехода: актор из контекста, ID из
// пути, bind+validate тела (если оно есть) и единый формат ответа.
func (c *OOSController) transition(ctx echo.Context, payload interface{}, call func(actorID, id uint64) (interface{}, error)) error {
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
