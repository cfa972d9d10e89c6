package entities

import "time"

// Batch - производственная серия, субъект дел всех трёх типов.
type Batch struct {
	ID             uint64     `db:"id"`
	BatchNumber    string     `db:"batch_number"`
	ProductName    string     `db:"product_name"`
	ManufacturedAt *time.Time `db:"manufactured_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// BatchRecordStep - шаг исполнения досье серии. Guard steps_terminal требует,
// чтобы перед подачей досье на проверку ни один шаг не оставался в
// PENDING/IN_PROGRESS.
type BatchRecordStep struct {
	ID          uint64     `db:"id"`
	CaseID      uint64     `db:"case_id"`
	StepNumber  int        `db:"step_number"`
	Name        string     `db:"name"`
	Status      string     `db:"status"`
	CompletedBy *uint64    `db:"completed_by"`
	CompletedAt *time.Time `db:"completed_at"`
}
