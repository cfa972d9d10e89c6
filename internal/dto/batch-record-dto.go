package dto

// CreateBatchRecordDTO: заведение электронного досье серии вместе с шагами
// производственного процесса.
type CreateBatchRecordDTO struct {
	Title   string                     `json:"title" validate:"required,not_blank"`
	BatchID uint64                     `json:"batch_id" validate:"required"`
	Steps   []CreateBatchRecordStepDTO `json:"steps" validate:"required,min=1,dive"`
}

type CreateBatchRecordStepDTO struct {
	StepNumber int    `json:"step_number" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required,not_blank"`
}

// SignActionDTO: review/approve/reject досье - всегда с повторной
// аутентификацией и формулировкой из словаря BATCH_RELEASE.
type SignActionDTO struct {
	Password string `json:"password" validate:"required"`
	Meaning  string `json:"meaning" validate:"required,not_blank"`
	Comment  string `json:"comment"`
}

// BatchRecordDetailDTO - полная карточка досье: дело, шаги и подписи.
type BatchRecordDetailDTO struct {
	Case       CaseDTO              `json:"case"`
	Steps      []BatchRecordStepDTO `json:"steps"`
	Signatures []SignatureDTO       `json:"signatures"`
}

type BatchRecordStepDTO struct {
	ID          uint64  `json:"id"`
	StepNumber  int     `json:"step_number"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	CompletedBy *uint64 `json:"completed_by,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
}
