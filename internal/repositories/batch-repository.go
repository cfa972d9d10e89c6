package repositories

import (
	"context"
	"errors"

	"gmp-system/internal/entities"
	apperrors "gmp-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BatchRepositoryInterface interface {
	FindBatch(ctx context.Context, id uint64) (*entities.Batch, error)
	CreateStepsInTx(ctx context.Context, tx pgx.Tx, caseID uint64, steps []entities.BatchRecordStep) error
	FindStepsByCaseID(ctx context.Context, caseID uint64) ([]entities.BatchRecordStep, error)
	// StepStatusCounts возвращает карту "статус шага -> количество" для guard
	// steps_terminal. Запрос выполняется через q, чтобы guard внутри
	// транзакции перехода видел консистентные данные.
	StepStatusCounts(ctx context.Context, q Querier, caseID uint64) (map[string]int, error)
	// CompleteStepInTx выполняется в транзакции вместе с записью таймлайна
	// и аудита: завершение шага не должно попадать в БД без следа.
	CompleteStepInTx(ctx context.Context, tx pgx.Tx, caseID, stepID, userID uint64) (*entities.BatchRecordStep, error)
}

type batchRepository struct {
	storage *pgxpool.Pool
}

func NewBatchRepository(storage *pgxpool.Pool) BatchRepositoryInterface {
	return &batchRepository{storage: storage}
}

func (r *batchRepository) FindBatch(ctx context.Context, id uint64) (*entities.Batch, error) {
	var b entities.Batch
	err := r.storage.QueryRow(ctx,
		"SELECT id, batch_number, product_name, manufactured_at, created_at FROM batches WHERE id = $1", id,
	).Scan(&b.ID, &b.BatchNumber, &b.ProductName, &b.ManufacturedAt, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *batchRepository) CreateStepsInTx(ctx context.Context, tx pgx.Tx, caseID uint64, steps []entities.BatchRecordStep) error {
	query := `
		INSERT INTO batch_record_steps (case_id, step_number, name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	for i := range steps {
		steps[i].CaseID = caseID
		if err := tx.QueryRow(ctx, query,
			caseID, steps[i].StepNumber, steps[i].Name, steps[i].Status,
		).Scan(&steps[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *batchRepository) FindStepsByCaseID(ctx context.Context, caseID uint64) ([]entities.BatchRecordStep, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, case_id, step_number, name, status, completed_by, completed_at
		FROM batch_record_steps
		WHERE case_id = $1
		ORDER BY step_number ASC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]entities.BatchRecordStep, 0)
	for rows.Next() {
		var s entities.BatchRecordStep
		if err := rows.Scan(&s.ID, &s.CaseID, &s.StepNumber, &s.Name, &s.Status, &s.CompletedBy, &s.CompletedAt); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *batchRepository) StepStatusCounts(ctx context.Context, q Querier, caseID uint64) (map[string]int, error) {
	if q == nil {
		q = r.storage
	}
	rows, err := q.Query(ctx,
		"SELECT status, COUNT(*) FROM batch_record_steps WHERE case_id = $1 GROUP BY status", caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *batchRepository) CompleteStepInTx(ctx context.Context, tx pgx.Tx, caseID, stepID, userID uint64) (*entities.BatchRecordStep, error) {
	var s entities.BatchRecordStep
	err := tx.QueryRow(ctx, `
		UPDATE batch_record_steps
		SET status = 'COMPLETED', completed_by = $3, completed_at = NOW()
		WHERE id = $2 AND case_id = $1 AND status IN ('PENDING', 'IN_PROGRESS')
		RETURNING id, case_id, step_number, name, status, completed_by, completed_at`,
		caseID, stepID, userID,
	).Scan(&s.ID, &s.CaseID, &s.StepNumber, &s.Name, &s.Status, &s.CompletedBy, &s.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
