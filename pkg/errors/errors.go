package errors

import (
	"fmt"
	"net/http"
	"strings"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrAccountLocked      = fmt.Errorf("учётная запись временно заблокирована из-за превышения числа попыток")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound     = fmt.Errorf("запись не найдена")
	ErrUserNotFound = fmt.Errorf("пользователь не найден")
	ErrBadRequest   = fmt.Errorf("неверный запрос")
)

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// WorkflowError - бизнес-ошибка движка дел с машиночитаемой причиной.
// Поле Reason уходит клиенту как есть; текст Message - для человека.
type WorkflowError struct {
	Reason  string
	Message string
}

func (e *WorkflowError) Error() string { return e.Message }

var (
	ErrCaseClosed          = &WorkflowError{Reason: "CASE_CLOSED", Message: "дело закрыто, изменения невозможны"}
	ErrSignatureAuthFailed = &WorkflowError{Reason: "AUTHENTICATION_FAILED", Message: "повторная аутентификация не пройдена"}
	ErrDuplicateSignature  = &WorkflowError{Reason: "DUPLICATE_SIGNATURE", Message: "подпись этого пользователя в данной области уже существует"}
	ErrSignatureImmutable  = &WorkflowError{Reason: "ESIGNATURE_IMMUTABLE", Message: "электронная подпись неизменяема"}
	ErrUnknownMeaning      = &WorkflowError{Reason: "UNKNOWN_MEANING", Message: "формулировка отсутствует в словаре области подписания"}
	ErrSignatureRequired   = &WorkflowError{Reason: "SIGNATURE_REQUIRED", Message: "переход требует электронной подписи"}
	ErrUnknownTransition   = &WorkflowError{Reason: "UNKNOWN_TRANSITION", Message: "переход не определён для данного типа дела"}
)

// HttpStatusFor сопоставляет причину бизнес-ошибки HTTP-коду.
func HttpStatusFor(err *WorkflowError) int {
	switch err.Reason {
	case "AUTHENTICATION_FAILED":
		return http.StatusUnauthorized
	case "ESIGNATURE_IMMUTABLE":
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// InvalidTransitionError возвращается, когда запрошенного ребра нет в графе
// состояний. Allowed перечисляет допустимые целевые статусы из текущего.
type InvalidTransitionError struct {
	CaseType   string
	FromStatus string
	ToStatus   string
	Allowed    []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("переход %s -> %s недопустим для %s (допустимо: %s)",
		e.FromStatus, e.ToStatus, e.CaseType, strings.Join(e.Allowed, ", "))
}

// GuardFailedError: ребро в графе есть, но предусловия перехода не выполнены.
type GuardFailedError struct {
	Transition string
	Unmet      []string
	Details    map[string]string
}

func (e *GuardFailedError) Error() string {
	return fmt.Sprintf("предусловия перехода %q не выполнены: %s",
		e.Transition, strings.Join(e.Unmet, ", "))
}

type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context ...map[string]interface{}) *HttpError {
	httpErr := &HttpError{Code: code, Message: message, Err: err}
	if len(context) > 0 {
		httpErr.Context = context[0]
	}
	return httpErr
}
