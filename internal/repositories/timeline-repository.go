package repositories

import (
	"context"
	"database/sql"

	"gmp-system/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TimelineItem - строка истории, обогащённая ФИО актора для выдачи наружу.
type TimelineItem struct {
	entities.TimelineEntry
	ActorFio sql.NullString `db:"actor_fio"`
}

// TimelineRepositoryInterface - append-only хранилище истории дел.
// Методов обновления и удаления нет намеренно.
type TimelineRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.TimelineEntry) error
	FindByCaseID(ctx context.Context, caseID uint64) ([]TimelineItem, error)
}

type TimelineRepository struct {
	storage *pgxpool.Pool
}

func NewTimelineRepository(storage *pgxpool.Pool) TimelineRepositoryInterface {
	return &TimelineRepository{storage: storage}
}

func (r *TimelineRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.TimelineEntry) error {
	query := `
		INSERT INTO case_timeline (case_id, action, actor_id, old_status, new_status, payload, signature_id, tx_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		entry.CaseID, entry.Action, entry.ActorID,
		entry.OldStatus, entry.NewStatus, entry.Payload, entry.SignatureID, entry.TxID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *TimelineRepository) FindByCaseID(ctx context.Context, caseID uint64) ([]TimelineItem, error) {
	query := `
		SELECT
			t.id, t.case_id, t.action, t.actor_id, t.old_status, t.new_status,
			t.payload, t.signature_id, t.tx_id, t.created_at,
			u.fio AS actor_fio
		FROM case_timeline t
		LEFT JOIN users u ON t.actor_id = u.id
		WHERE t.case_id = $1
		ORDER BY t.created_at ASC, t.id ASC`

	rows, err := r.storage.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []TimelineItem
	for rows.Next() {
		var item TimelineItem
		if err := rows.Scan(
			&item.ID, &item.CaseID, &item.Action, &item.ActorID, &item.OldStatus, &item.NewStatus,
			&item.Payload, &item.SignatureID, &item.TxID, &item.CreatedAt,
			&item.ActorFio,
		); err != nil {
			return nil, err
		}
		history = append(history, item)
	}
	return history, rows.Err()
}
