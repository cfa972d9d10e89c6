package entities

import (
	"time"

	"github.com/google/uuid"
)

// TimelineEntry - неизменяемая строка истории дела. Только вставка; порядок
// (case_id, created_at, id) восстанавливает полную историю переходов.
type TimelineEntry struct {
	ID          uint64     `db:"id"`
	CaseID      uint64     `db:"case_id"`
	Action      string     `db:"action"`
	ActorID     uint64     `db:"actor_id"`
	OldStatus   *string    `db:"old_status"`
	NewStatus   *string    `db:"new_status"`
	Payload     *string    `db:"payload"`
	SignatureID *uint64    `db:"signature_id"`
	TxID        *uuid.UUID `db:"tx_id"`
	CreatedAt   time.Time  `db:"created_at"`
}
