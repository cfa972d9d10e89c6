package entities

import "time"

// Signature - электронная подпись. Создаётся в момент успешной повторной
// аутентификации и живёт вечно (срок хранения GMP). Ни один путь кода не
// обновляет и не удаляет строку; попытки фиксируются в аудите как
// MODIFICATION_BLOCKED.
type Signature struct {
	ID             uint64    `db:"id"`
	Scope          string    `db:"scope"`
	EntityType     string    `db:"entity_type"`
	EntityID       uint64    `db:"entity_id"`
	SignedByUserID uint64    `db:"signed_by_user_id"`
	Meaning        string    `db:"meaning"`
	Comment        *string   `db:"comment"`
	SignedAt       time.Time `db:"signed_at"`
}
