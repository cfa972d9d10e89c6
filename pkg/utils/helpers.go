package utils

import (
	"context"
	"database/sql"

	"gmp-system/pkg/contextkeys"
	apperrors "gmp-system/pkg/errors"
)

func NullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func NullTimeToEmptyString(nt sql.NullTime) string {
	if nt.Valid {
		return nt.Time.Local().Format("2006-01-02 15:04:05")
	}
	return ""
}

func StringPtr(s string) *string {
	return &s
}

func BoolPtr(b bool) *bool {
	return &b
}

func Float64Ptr(f float64) *float64 {
	return &f
}

// ActorFromContext достаёт ID аутентифицированного пользователя,
// положенный туда AuthMiddleware.
func ActorFromContext(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int)
	if !ok || userID <= 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return uint64(userID), nil
}
