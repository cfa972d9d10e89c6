package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "gmp-system/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func callErrorResponse(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, ErrorResponse(ctx, err, zap.NewNop()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

// Ошибки разбора запроса из контроллеров (некорректный :id, отсутствующий
// query-параметр) должны доходить до клиента со своим кодом, а не падать
// в 500.
func TestErrorResponse_EchoHTTPError(t *testing.T) {
	code, body := callErrorResponse(t, echo.NewHTTPError(http.StatusBadRequest, "некорректный ID"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "некорректный ID", body["message"])
}

func TestErrorResponse_InvalidTransition(t *testing.T) {
	code, body := callErrorResponse(t, &apperrors.InvalidTransitionError{
		CaseType:   "OOS_INVESTIGATION",
		FromStatus: "OPEN",
		ToStatus:   "PHASE_2_FULL_INVESTIGATION",
		Allowed:    []string{"PHASE_1"},
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_TRANSITION", body["reason"])
}

func TestErrorResponse_NotFound(t *testing.T) {
	code, body := callErrorResponse(t, apperrors.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["status"])
}
