package repositories

import (
	"context"
	"database/sql"
	"errors"

	"gmp-system/internal/entities"
	apperrors "gmp-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SignatureItem - подпись с данными подписанта (ФИО, активность учётной записи).
type SignatureItem struct {
	entities.Signature
	SignerFio    sql.NullString `db:"signer_fio"`
	SignerActive sql.NullBool   `db:"signer_active"`
}

// SignatureRepositoryInterface - хранилище электронных подписей. Только
// вставка и чтение: неизменяемость подписи - инвариант схемы доступа, а не
// соглашение. Уникальность (scope, entity_type, entity_id, signed_by_user_id)
// дублируется уникальным индексом в БД на случай гонки двух подписаний.
type SignatureRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, s *entities.Signature) error
	Exists(ctx context.Context, q Querier, scope, entityType string, entityID, userID uint64) (bool, error)
	FindByID(ctx context.Context, id uint64) (*SignatureItem, error)
	FindByEntityAndMeaning(ctx context.Context, q Querier, scope, entityType string, entityID uint64, meaning string) (bool, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]SignatureItem, error)
}

// Querier позволяет выполнять проверки как на пуле, так и внутри транзакции
// перехода (guard review_signed обязан видеть строки своей транзакции).
type Querier = querier

type SignatureRepository struct {
	storage *pgxpool.Pool
}

func NewSignatureRepository(storage *pgxpool.Pool) SignatureRepositoryInterface {
	return &SignatureRepository{storage: storage}
}

func (r *SignatureRepository) CreateInTx(ctx context.Context, tx pgx.Tx, s *entities.Signature) error {
	query := `
		INSERT INTO e_signatures (scope, entity_type, entity_id, signed_by_user_id, meaning, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, signed_at`
	err := tx.QueryRow(ctx, query,
		s.Scope, s.EntityType, s.EntityID, s.SignedByUserID, s.Meaning, s.Comment,
	).Scan(&s.ID, &s.SignedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicateSignature
		}
		return err
	}
	return nil
}

func (r *SignatureRepository) Exists(ctx context.Context, q Querier, scope, entityType string, entityID, userID uint64) (bool, error) {
	if q == nil {
		q = r.storage
	}
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM e_signatures
			WHERE scope = $1 AND entity_type = $2 AND entity_id = $3 AND signed_by_user_id = $4
		)`, scope, entityType, entityID, userID).Scan(&exists)
	return exists, err
}

func (r *SignatureRepository) FindByEntityAndMeaning(ctx context.Context, q Querier, scope, entityType string, entityID uint64, meaning string) (bool, error) {
	if q == nil {
		q = r.storage
	}
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM e_signatures
			WHERE scope = $1 AND entity_type = $2 AND entity_id = $3 AND meaning = $4
		)`, scope, entityType, entityID, meaning).Scan(&exists)
	return exists, err
}

const signatureSelect = `
	SELECT s.id, s.scope, s.entity_type, s.entity_id, s.signed_by_user_id,
	       s.meaning, s.comment, s.signed_at,
	       u.fio AS signer_fio, u.is_active AS signer_active
	FROM e_signatures s
	LEFT JOIN users u ON s.signed_by_user_id = u.id`

func (r *SignatureRepository) FindByID(ctx context.Context, id uint64) (*SignatureItem, error) {
	var item SignatureItem
	err := r.storage.QueryRow(ctx, signatureSelect+" WHERE s.id = $1", id).Scan(
		&item.ID, &item.Scope, &item.EntityType, &item.EntityID, &item.SignedByUserID,
		&item.Meaning, &item.Comment, &item.SignedAt,
		&item.SignerFio, &item.SignerActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *SignatureRepository) ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]SignatureItem, error) {
	rows, err := r.storage.Query(ctx, signatureSelect+
		" WHERE s.entity_type = $1 AND s.entity_id = $2 ORDER BY s.signed_at ASC, s.id ASC",
		entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]SignatureItem, 0)
	for rows.Next() {
		var item SignatureItem
		if err := rows.Scan(
			&item.ID, &item.Scope, &item.EntityType, &item.EntityID, &item.SignedByUserID,
			&item.Meaning, &item.Comment, &item.SignedAt,
			&item.SignerFio, &item.SignerActive,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
