package dto

// SignDTO - общий примитив подписания: повторная аутентификация плюс
// формулировка из утверждённого словаря области.
type SignDTO struct {
	Password   string `json:"password" validate:"required"`
	Scope      string `json:"scope" validate:"required,oneof=QC_APPROVAL BATCH_RELEASE DEVIATION_APPROVAL"`
	EntityType string `json:"entityType" validate:"required,not_blank"`
	EntityID   uint64 `json:"entityId" validate:"required"`
	Meaning    string `json:"meaning" validate:"required,not_blank"`
	Comment    string `json:"comment"`
}

type VerifyPasswordDTO struct {
	Password string `json:"password" validate:"required"`
}

// SignatureDTO: Что сервер отправляет клиенту. Поле SignerActive - текущее
// состояние учётной записи подписанта, а не валидность самого дела.
type SignatureDTO struct {
	ID             uint64 `json:"id"`
	Scope          string `json:"scope"`
	EntityType     string `json:"entity_type"`
	EntityID       uint64 `json:"entity_id"`
	SignedByUserID uint64 `json:"signed_by_user_id"`
	SignerFio      string `json:"signer_fio,omitempty"`
	SignerActive   bool   `json:"signer_active"`
	Meaning        string `json:"meaning"`
	Comment        string `json:"comment,omitempty"`
	SignedAt       string `json:"signed_at"`
}
