package dto

// CreateOOSCaseDTO: заведение OOS-расследования по результату вне спецификации.
type CreateOOSCaseDTO struct {
	Title              string   `json:"title" validate:"required,not_blank"`
	BatchID            uint64   `json:"batch_id" validate:"required"`
	TestName           string   `json:"test_name" validate:"required,not_blank"`
	ResultValue        *float64 `json:"result_value" validate:"required"`
	SpecificationLimit string   `json:"specification_limit" validate:"required,not_blank"`
}

type StartPhase1DTO struct {
	InvestigatorID uint64 `json:"investigatorId" validate:"required"`
}

type CompletePhase1DTO struct {
	Conclusion      string `json:"conclusion" validate:"required,not_blank"`
	ProceedToPhase2 *bool  `json:"proceedToPhase2" validate:"required"`
}

type CompletePhase2DTO struct {
	Conclusion string `json:"conclusion" validate:"required,not_blank"`
}

type ProposeCAPADTO struct {
	RootCause        string `json:"rootCause" validate:"required,not_blank"`
	CorrectiveAction string `json:"correctiveAction" validate:"required,not_blank"`
	PreventiveAction string `json:"preventiveAction" validate:"required,not_blank"`
}

type ApproveCAPADTO struct {
	Password         string `json:"password" validate:"required"`
	SignatureMeaning string `json:"signatureMeaning" validate:"required,not_blank"`
	Comment          string `json:"comment"`
}

type CloseOOSDTO struct {
	ClosureType      string `json:"closureType" validate:"required,oneof=CONFIRMED INVALIDATED INCONCLUSIVE"`
	FinalConclusion  string `json:"finalConclusion" validate:"required,not_blank"`
	Password         string `json:"password" validate:"required"`
	SignatureMeaning string `json:"signatureMeaning" validate:"required,not_blank"`
	Comment          string `json:"comment"`
}
