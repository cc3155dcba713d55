package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/user"
)

// postgresUserRepo stores accounts in the users table. The unique index on
// lower(email) enforces one account per address.
type postgresUserRepo struct {
	db  *sqlx.DB
	log *logger.ZapLogger
}

// NewPostgresUserRepo creates the relational-backend user repository.
func NewPostgresUserRepo(db *sqlx.DB, log *logger.ZapLogger) user.UserRepo {
	return &postgresUserRepo{db: db, log: log}
}

func (r *postgresUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, display_name, photo_url, provider,
			created_at, updated_at
		FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to read user", logger.String("user_id", id), logger.Err(err))
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, display_name, photo_url, provider,
			created_at, updated_at
		FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to read user by email", logger.Err(err))
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, photo_url,
			provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.PhotoURL,
		u.Provider, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		r.log.Error("failed to create user", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *postgresUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = $1, photo_url = $2, password_hash = $3, updated_at = $4
		WHERE id = $5`,
		u.DisplayName, u.PhotoURL, u.PasswordHash, u.UpdatedAt, u.ID)
	if err != nil {
		r.log.Error("failed to update user", logger.String("user_id", u.ID), logger.Err(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *postgresUserRepo) Destroy() {}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
