package controllers

import (
	"io"
	"net/http"

	"gmp-system/internal/dto"
	"gmp-system/internal/services"
	"gmp-system/internal/workflow"
	"gmp-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SignatureController struct {
	signatureService services.SignatureServiceInterface
	logger           *zap.Logger
}

func NewSignatureController(signatureService services.SignatureServiceInterface, logger *zap.Logger) *SignatureController {
	return &SignatureController{signatureService: signatureService, logger: logger}
}

func (c *SignatureController) ListMeanings(ctx echo.Context) error {
	scope := ctx.QueryParam("scope")
	if scope == "" {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "параметр 'scope' обязателен"), c.logger)
	}
	meanings := c.signatureService.ListMeanings(workflow.Scope(scope))
	return utils.SuccessResponse(ctx, map[string]interface{}{
		"scope":    scope,
		"meanings": meanings,
	}, "Successfully", http.StatusOK)
}

func (c *SignatureController) Sign(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SignDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.signatureService.Sign(ctx.Request().Context(), actorID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Подпись создана", http.StatusCreated)
}

func (c *SignatureController) GetByID(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.signatureService.Verify(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Successfully", http.StatusOK)
}

func (c *SignatureController) VerifyPassword(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.VerifyPasswordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.signatureService.VerifyPassword(ctx.Request().Context(), actorID, payload.Password); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Пароль подтверждён", http.StatusOK)
}

// BlockModification - обработчик PUT/PATCH/DELETE по подписи. Маршруты
// существуют только для того, чтобы зафиксировать попытку в аудите и жёстко
// отказать: подпись неизменяема.
func (c *SignatureController) BlockModification(ctx echo.Context) error {
	actorID, err := utils.ActorFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// Тело читается целиком ради криминалистики: что именно пытались записать.
	body, _ := io.ReadAll(io.LimitReader(ctx.Request().Body, 64*1024))

	err = c.signatureService.BlockModification(ctx.Request().Context(), actorID, id, ctx.Request().Method, body)
	return utils.ErrorResponse(ctx, err, c.logger)
}
