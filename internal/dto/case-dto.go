package dto

// CaseDTO: Что сервер отправляет клиенту в ответ на любую операцию над делом.
type CaseDTO struct {
	ID         uint64  `json:"id"`
	CaseNumber string  `json:"case_number"`
	CaseType   string  `json:"case_type"`
	Status     string  `json:"status"`
	Title      string  `json:"title"`
	BatchID    *uint64 `json:"batch_id,omitempty"`
	CreatedBy  uint64  `json:"created_by"`

	TestName           string   `json:"test_name,omitempty"`
	ResultValue        *float64 `json:"result_value,omitempty"`
	SpecificationLimit string   `json:"specification_limit,omitempty"`
	Conclusion         string   `json:"conclusion,omitempty"`
	RootCause          string   `json:"root_cause,omitempty"`
	CorrectiveAction   string   `json:"corrective_action,omitempty"`
	PreventiveAction   string   `json:"preventive_action,omitempty"`
	FinalConclusion    string   `json:"final_conclusion,omitempty"`
	InvestigatorID     *uint64  `json:"investigator_id,omitempty"`
	Severity           string   `json:"severity,omitempty"`
	Description        string   `json:"description,omitempty"`

	Phase1StartedAt        string `json:"phase1_started_at,omitempty"`
	Phase1CompletedAt      string `json:"phase1_completed_at,omitempty"`
	Phase2StartedAt        string `json:"phase2_started_at,omitempty"`
	Phase2CompletedAt      string `json:"phase2_completed_at,omitempty"`
	InvestigationStartedAt string `json:"investigation_started_at,omitempty"`
	StartedAt              string `json:"started_at,omitempty"`
	CAPAApprovedAt         string `json:"capa_approved_at,omitempty"`
	ApprovedAt             string `json:"approved_at,omitempty"`
	RejectedAt             string `json:"rejected_at,omitempty"`
	ClosedAt               string `json:"closed_at,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ShortUserDTO struct {
	ID  uint64 `json:"id"`
	Fio string `json:"fio"`
}
