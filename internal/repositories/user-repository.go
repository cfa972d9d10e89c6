package repositories

import (
	"context"
	"errors"

	"gmp-system/internal/entities"
	apperrors "gmp-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	userTable  = "users"
	userFields = "id, fio, email, login, password, position, is_active, created_at, updated_at"
)

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmailOrLogin(ctx context.Context, login string) (*entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) error
}

type userRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &userRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Fio, &u.Email, &u.Login, &u.Password, &u.Position, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := "SELECT " + userFields + " FROM " + userTable + " WHERE id = $1"
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *userRepository) FindUserByEmailOrLogin(ctx context.Context, login string) (*entities.User, error) {
	query := "SELECT " + userFields + " FROM " + userTable + " WHERE email = $1 OR login = $1 LIMIT 1"
	return scanUser(r.storage.QueryRow(ctx, query, login))
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (fio, email, login, password, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.storage.QueryRow(ctx, query,
		user.Fio, user.Email, user.Login, user.Password, user.Position, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)
}
