package entities

import (
	"time"

	"github.com/google/uuid"
)

// Действия общесистемного аудита.
const (
	AuditCaseCreated         = "CASE_CREATED"
	AuditStatusChanged       = "STATUS_CHANGED"
	AuditStepCompleted       = "STEP_COMPLETED"
	AuditSignatureCreated    = "SIGNATURE_CREATED"
	AuditSignatureAuthFailed = "SIGNATURE_AUTH_FAILED"
	AuditModificationBlocked = "MODIFICATION_BLOCKED"
)

// AuditEntry - общесистемная криминалистическая запись, не зависящая от
// семантики workflow. Пишется рядом с записью таймлайна, а не вместо неё.
// Таблица insert-only.
type AuditEntry struct {
	ID         uint64     `db:"id"`
	UserID     uint64     `db:"user_id"`
	Action     string     `db:"action"`
	EntityType string     `db:"entity_type"`
	EntityID   uint64     `db:"entity_id"`
	OldValues  *string    `db:"old_values"`
	NewValues  *string    `db:"new_values"`
	TxID       *uuid.UUID `db:"tx_id"`
	CreatedAt  time.Time  `db:"created_at"`
}
