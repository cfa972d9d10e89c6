package dto

type CreateDeviationDTO struct {
	Title       string `json:"title" validate:"required,not_blank"`
	BatchID     uint64 `json:"batch_id" validate:"required"`
	Severity    string `json:"severity" validate:"required,oneof=MINOR MAJOR CRITICAL"`
	Description string `json:"description" validate:"required,not_blank"`
}

type DeviationProposeCAPADTO struct {
	RootCause        string `json:"rootCause" validate:"required,not_blank"`
	CorrectiveAction string `json:"correctiveAction" validate:"required,not_blank"`
	PreventiveAction string `json:"preventiveAction" validate:"required,not_blank"`
}

type CloseDeviationDTO struct {
	FinalConclusion string `json:"finalConclusion" validate:"required,not_blank"`
	Comment         string `json:"comment"`
}
