package repositories

import (
	"context"
	"database/sql"
	"time"

	"gmp-system/internal/entities"
	db "gmp-system/internal/infrastructure/db"
	"gmp-system/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditItem - строка аудита с ФИО актора.
type AuditItem struct {
	entities.AuditEntry
	ActorFio sql.NullString `db:"actor_fio"`
}

// AuditFilter - параметры выборки аудиторского следа.
type AuditFilter struct {
	List     types.Filter
	DateFrom *time.Time
	DateTo   *time.Time
}

// AuditRepositoryInterface - общесистемный аудит. Таблица insert-only:
// интерфейс не содержит и никогда не получит Update/Delete.
type AuditRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.AuditEntry) error
	Create(ctx context.Context, entry *entities.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditItem, uint64, error)
}

type AuditRepository struct {
	storage *pgxpool.Pool
}

func NewAuditRepository(storage *pgxpool.Pool) AuditRepositoryInterface {
	return &AuditRepository{storage: storage}
}

const auditInsertQuery = `
	INSERT INTO audit_log (user_id, action, entity_type, entity_id, old_values, new_values, tx_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at`

func (r *AuditRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.AuditEntry) error {
	return tx.QueryRow(ctx, auditInsertQuery,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		entry.OldValues, entry.NewValues, entry.TxID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// Create пишет запись вне транзакции бизнес-операции. Используется для
// фиксации событий безопасности (неуспешная повторная аутентификация,
// попытка изменить подпись): они должны сохраниться, даже когда сама
// операция отклонена.
func (r *AuditRepository) Create(ctx context.Context, entry *entities.AuditEntry) error {
	return r.storage.QueryRow(ctx, auditInsertQuery,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		entry.OldValues, entry.NewValues, entry.TxID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

var auditAllowedColumns = map[string]string{
	"user_id":     "a.user_id",
	"action":      "a.action",
	"entity_type": "a.entity_type",
	"entity_id":   "a.entity_id",
}

func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]AuditItem, uint64, error) {
	base := sq.Select().From("audit_log a").
		PlaceholderFormat(sq.Dollar).
		LeftJoin("users u ON a.user_id = u.id")
	if filter.DateFrom != nil {
		base = base.Where(sq.GtOrEq{"a.created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		base = base.Where(sq.LtOrEq{"a.created_at": *filter.DateTo})
	}

	countBuilder := db.ApplyListFilters(base.Column("COUNT(*)"), filter.List, auditAllowedColumns)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []AuditItem{}, 0, nil
	}

	builder := base.Columns(
		"a.id", "a.user_id", "a.action", "a.entity_type", "a.entity_id",
		"a.old_values", "a.new_values", "a.tx_id", "a.created_at",
		"u.fio AS actor_fio",
	)
	builder = db.ApplyListParams(builder, filter.List, auditAllowedColumns)
	builder = builder.OrderBy("a.created_at DESC", "a.id DESC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]AuditItem, 0)
	for rows.Next() {
		var item AuditItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Action, &item.EntityType, &item.EntityID,
			&item.OldValues, &item.NewValues, &item.TxID, &item.CreatedAt,
			&item.ActorFio,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}
