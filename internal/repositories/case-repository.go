package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gmp-system/internal/entities"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	caseTable  = "cases"
	caseFields = `id, case_number, case_type, status, title, batch_id, created_by,
		test_name, result_value, specification_limit, conclusion, root_cause,
		corrective_action, preventive_action, final_conclusion, investigator_id,
		severity, description,
		phase1_started_at, phase1_completed_at, phase2_started_at, phase2_completed_at,
		investigation_started_at, started_at, capa_approved_at, approved_at, rejected_at, closed_at,
		created_at, updated_at`
)

// allowedTimestampColumns - белый список колонок фазовых отметок. Имя колонки
// приходит из декларации перехода и подставляется в SQL, поэтому всё, что не
// объявлено здесь, отклоняется.
var allowedTimestampColumns = map[string]bool{
	"phase1_started_at":        true,
	"phase1_completed_at":      true,
	"phase2_started_at":        true,
	"phase2_completed_at":      true,
	"investigation_started_at": true,
	"started_at":               true,
	"capa_approved_at":         true,
	"approved_at":              true,
	"rejected_at":              true,
	"closed_at":                true,
}

// CaseDetails - частичное обновление содержательных полей дела, выполняемое
// вместе с переходом (вывод фазы, план CAPA, итоговое заключение). Статус
// здесь намеренно отсутствует: его меняет только UpdateStatusInTx.
type CaseDetails struct {
	Conclusion       *string
	RootCause        *string
	CorrectiveAction *string
	PreventiveAction *string
	FinalConclusion  *string
	InvestigatorID   *uint64
}

func (d CaseDetails) isEmpty() bool {
	return d.Conclusion == nil && d.RootCause == nil && d.CorrectiveAction == nil &&
		d.PreventiveAction == nil && d.FinalConclusion == nil && d.InvestigatorID == nil
}

type CaseRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, c *entities.Case) error
	FindByID(ctx context.Context, caseType string, id uint64) (*entities.Case, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, caseType string, id uint64) (*entities.Case, error)
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, newStatus, timestampColumn string) error
	UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, id uint64, details CaseDetails) error
	List(ctx context.Context, caseType string, filter types.Filter) ([]entities.Case, uint64, error)
}

type caseRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCaseRepository(storage *pgxpool.Pool, logger *zap.Logger) CaseRepositoryInterface {
	return &caseRepository{storage: storage, logger: logger}
}

func scanCase(row pgx.Row) (*entities.Case, error) {
	var c entities.Case
	err := row.Scan(
		&c.ID, &c.CaseNumber, &c.CaseType, &c.Status, &c.Title, &c.BatchID, &c.CreatedBy,
		&c.TestName, &c.ResultValue, &c.SpecificationLimit, &c.Conclusion, &c.RootCause,
		&c.CorrectiveAction, &c.PreventiveAction, &c.FinalConclusion, &c.InvestigatorID,
		&c.Severity, &c.Description,
		&c.Phase1StartedAt, &c.Phase1CompletedAt, &c.Phase2StartedAt, &c.Phase2CompletedAt,
		&c.InvestigationStartedAt, &c.StartedAt, &c.CAPAApprovedAt, &c.ApprovedAt, &c.RejectedAt, &c.ClosedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateInTx вставляет дело и присваивает ему номер вида OOS-2026-0007
// в той же транзакции.
func (r *caseRepository) CreateInTx(ctx context.Context, tx pgx.Tx, c *entities.Case) error {
	query := `
		INSERT INTO cases (case_number, case_type, status, title, batch_id, created_by,
			test_name, result_value, specification_limit, severity, description)
		VALUES ('', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, query,
		c.CaseType, c.Status, c.Title, c.BatchID, c.CreatedBy,
		c.TestName, c.ResultValue, c.SpecificationLimit, c.Severity, c.Description,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("не удалось создать дело: %w", err)
	}

	prefix := map[string]string{
		"OOS_CASE":        "OOS",
		"BATCH_RECORD":    "BR",
		"BATCH_DEVIATION": "DEV",
	}[c.CaseType]
	c.CaseNumber = fmt.Sprintf("%s-%d-%04d", prefix, time.Now().Year(), c.ID)

	_, err = tx.Exec(ctx, `UPDATE cases SET case_number = $1 WHERE id = $2`, c.CaseNumber, c.ID)
	if err != nil {
		return fmt.Errorf("не удалось присвоить номер дела: %w", err)
	}
	return nil
}

func (r *caseRepository) FindByID(ctx context.Context, caseType string, id uint64) (*entities.Case, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND case_type = $2", caseFields, caseTable)
	return scanCase(r.storage.QueryRow(ctx, query, id, caseType))
}

// Exists проверяет наличие дела без привязки к типу: маршрут таймлайна
// не знает тип дела по одному :id.
func (r *caseRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// FindForUpdateInTx читает дело с блокировкой строки (SELECT ... FOR UPDATE).
// Два конкурентных перехода по одному делу сериализуются на этой блокировке:
// второй увидит уже обновлённый статус и упадёт на проверке графа, а не
// закоммитит переход из устаревшего состояния.
func (r *caseRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, caseType string, id uint64) (*entities.Case, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND case_type = $2 FOR UPDATE", caseFields, caseTable)
	return scanCase(tx.QueryRow(ctx, query, id, caseType))
}

func (r *caseRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, newStatus, timestampColumn string) error {
	query := "UPDATE cases SET status = $1, updated_at = NOW() WHERE id = $2"
	if timestampColumn != "" {
		if !allowedTimestampColumns[timestampColumn] {
			return fmt.Errorf("недопустимая колонка отметки времени: %s", timestampColumn)
		}
		query = fmt.Sprintf("UPDATE cases SET status = $1, %s = NOW(), updated_at = NOW() WHERE id = $2", timestampColumn)
	}

	result, err := tx.Exec(ctx, query, newStatus, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *caseRepository) UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, id uint64, details CaseDetails) error {
	if details.isEmpty() {
		return nil
	}

	builder := sq.Update(caseTable).PlaceholderFormat(sq.Dollar).Where(sq.Eq{"id": id})
	if details.Conclusion != nil {
		builder = builder.Set("conclusion", *details.Conclusion)
	}
	if details.RootCause != nil {
		builder = builder.Set("root_cause", *details.RootCause)
	}
	if details.CorrectiveAction != nil {
		builder = builder.Set("corrective_action", *details.CorrectiveAction)
	}
	if details.PreventiveAction != nil {
		builder = builder.Set("preventive_action", *details.PreventiveAction)
	}
	if details.FinalConclusion != nil {
		builder = builder.Set("final_conclusion", *details.FinalConclusion)
	}
	if details.InvestigatorID != nil {
		builder = builder.Set("investigator_id", *details.InvestigatorID)
	}
	builder = builder.Set("updated_at", sq.Expr("NOW()"))

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, query, args...)
	return err
}

func (r *caseRepository) List(ctx context.Context, caseType string, filter types.Filter) ([]entities.Case, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From(caseTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"case_type": caseType})
	if filter.Search != "" {
		countBuilder = countBuilder.Where(sq.Or{
			sq.ILike{"case_number": "%" + filter.Search + "%"},
			sq.ILike{"title": "%" + filter.Search + "%"},
		})
	}
	if status, ok := filter.Filter["status"]; ok {
		countBuilder = countBuilder.Where(sq.Eq{"status": status})
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Case{}, 0, nil
	}

	builder := sq.Select(caseFields).From(caseTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"case_type": caseType}).
		OrderBy("id DESC")
	if filter.Search != "" {
		builder = builder.Where(sq.Or{
			sq.ILike{"case_number": "%" + filter.Search + "%"},
			sq.ILike{"title": "%" + filter.Search + "%"},
		})
	}
	if status, ok := filter.Filter["status"]; ok {
		builder = builder.Where(sq.Eq{"status": status})
	}
	if filter.WithPagination {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cases := make([]entities.Case, 0)
	for rows.Next() {
		var c entities.Case
		if err := rows.Scan(
			&c.ID, &c.CaseNumber, &c.CaseType, &c.Status, &c.Title, &c.BatchID, &c.CreatedBy,
			&c.TestName, &c.ResultValue, &c.SpecificationLimit, &c.Conclusion, &c.RootCause,
			&c.CorrectiveAction, &c.PreventiveAction, &c.FinalConclusion, &c.InvestigatorID,
			&c.Severity, &c.Description,
			&c.Phase1StartedAt, &c.Phase1CompletedAt, &c.Phase2StartedAt, &c.Phase2CompletedAt,
			&c.InvestigationStartedAt, &c.StartedAt, &c.CAPAApprovedAt, &c.ApprovedAt, &c.RejectedAt, &c.ClosedAt,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		cases = append(cases, c)
	}
	return cases, total, rows.Err()
}
