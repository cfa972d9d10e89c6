package dto

// AuditEntryDTO - строка общесистемного аудита для выдачи наружу.
type AuditEntryDTO struct {
	ID         uint64 `json:"id"`
	UserID     uint64 `json:"user_id"`
	ActorFio   string `json:"actor_fio,omitempty"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	OldValues  string `json:"old_values,omitempty"`
	NewValues  string `json:"new_values,omitempty"`
	CreatedAt  string `json:"created_at"`
}
