package entities

import "time"

// Case - одно регулируемое дело (OOS-расследование, досье серии, отклонение).
// Статус меняется только исполнителем переходов внутри транзакции; прямое
// обновление поля из других мест запрещено дисциплиной репозитория
// (единственный метод записи статуса - UpdateStatusInTx).
type Case struct {
	ID         uint64  `db:"id"`
	CaseNumber string  `db:"case_number"`
	CaseType   string  `db:"case_type"`
	Status     string  `db:"status"`
	Title      string  `db:"title"`
	BatchID    *uint64 `db:"batch_id"`
	CreatedBy  uint64  `db:"created_by"`

	// Детали OOS-расследования
	TestName           *string  `db:"test_name"`
	ResultValue        *float64 `db:"result_value"`
	SpecificationLimit *string  `db:"specification_limit"`
	Conclusion         *string  `db:"conclusion"`
	RootCause          *string  `db:"root_cause"`
	CorrectiveAction   *string  `db:"corrective_action"`
	PreventiveAction   *string  `db:"preventive_action"`
	FinalConclusion    *string  `db:"final_conclusion"`
	InvestigatorID     *uint64  `db:"investigator_id"`

	// Детали отклонения
	Severity    *string `db:"severity"`
	Description *string `db:"description"`

	// Отметки времени фазовых границ
	Phase1StartedAt        *time.Time `db:"phase1_started_at"`
	Phase1CompletedAt      *time.Time `db:"phase1_completed_at"`
	Phase2StartedAt        *time.Time `db:"phase2_started_at"`
	Phase2CompletedAt      *time.Time `db:"phase2_completed_at"`
	InvestigationStartedAt *time.Time `db:"investigation_started_at"`
	StartedAt              *time.Time `db:"started_at"`
	CAPAApprovedAt         *time.Time `db:"capa_approved_at"`
	ApprovedAt             *time.Time `db:"approved_at"`
	RejectedAt             *time.Time `db:"rejected_at"`
	ClosedAt               *time.Time `db:"closed_at"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}
