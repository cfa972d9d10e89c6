package dto

// TimelineEventDTO - один блок истории дела: кто, когда, что сделал,
// из какого статуса в какой перешло дело.
type TimelineEventDTO struct {
	ID          uint64       `json:"id"`
	Action      string       `json:"action"`
	Actor       ShortUserDTO `json:"actor"`
	OldStatus   string       `json:"old_status,omitempty"`
	NewStatus   string       `json:"new_status,omitempty"`
	Lines       []string     `json:"lines"`
	SignatureID *uint64      `json:"signature_id,omitempty"`
	CreatedAt   string       `json:"created_at"`
}
