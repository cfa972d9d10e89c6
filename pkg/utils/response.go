package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "gmp-system/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Reason  string      `json:"reason,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	response := &HTTPResponse{Status: true, Message: message, Body: body}
	return ctx.JSON(code, response)
}

// ErrorResponse переводит ошибку сервисного слоя в HTTP-ответ. Бизнес-ошибки
// движка получают машиночитаемое поле reason, чтобы клиент не парсил текст.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	// Контроллеры отдают ошибки разбора запроса как echo.HTTPError;
	// это клиентские 4xx, а не повод для лога "Unexpected Error".
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return c.JSON(echoErr.Code, map[string]interface{}{
			"status":  false,
			"message": fmt.Sprintf("%v", echoErr.Message),
		})
	}

	var invalidTransition *apperrors.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"reason":  "INVALID_TRANSITION",
			"message": invalidTransition.Error(),
			"body": map[string]interface{}{
				"case_type":   invalidTransition.CaseType,
				"from_status": invalidTransition.FromStatus,
				"to_status":   invalidTransition.ToStatus,
				"allowed":     invalidTransition.Allowed,
			},
		})
	}

	var guardFailed *apperrors.GuardFailedError
	if errors.As(err, &guardFailed) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"reason":  "GUARD_FAILED",
			"message": guardFailed.Error(),
			"body": map[string]interface{}{
				"transition": guardFailed.Transition,
				"unmet":      guardFailed.Unmet,
				"details":    guardFailed.Details,
			},
		})
	}

	var workflowErr *apperrors.WorkflowError
	if errors.As(err, &workflowErr) {
		return c.JSON(apperrors.HttpStatusFor(workflowErr), map[string]interface{}{
			"status":  false,
			"reason":  workflowErr.Reason,
			"message": workflowErr.Message,
		})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Ошибка валидации: " + strings.Join(msgs, "; ")})
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": invalidInput.Message})
	}

	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, map[string]interface{}{"status": false, "message": err.Error()})
	}
	if errors.Is(err, apperrors.ErrInvalidCredentials) || errors.Is(err, apperrors.ErrAccountLocked) {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"status": false, "message": err.Error()})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}
