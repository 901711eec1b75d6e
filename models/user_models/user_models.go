package user_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickstay/booking/logger"
)

var ErrUserNotFound = errors.New("user not found")

// User mirrors an identity-provider account. Rows are created, updated
// and deleted exclusively by the provider webhook; booking logic only
// reads them. The ID is the provider's external identifier.
type User struct {
	ID        string
	Email     string
	Username  string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserModel carries the pool for user queries.
type UserModel struct {
	DB *pgxpool.Pool
}

func NewUserModel(db *pgxpool.Pool) *UserModel {
	return &UserModel{DB: db}
}

func (m *UserModel) GetByID(ctx context.Context, id string) (*User, error) {
	const query = `
SELECT id, email, username, image, created_at, updated_at
FROM users WHERE id = $1`

	var u User
	err := m.DB.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.Username, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create inserts a provider user. A replayed user.created event for an
// existing ID falls through to an update rather than failing.
func (m *UserModel) Create(ctx context.Context, u *User) error {
	const stmt = `
INSERT INTO users (id, email, username, image)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email, username = EXCLUDED.username,
    image = EXCLUDED.image, updated_at = NOW()`

	if _, err := m.DB.Exec(ctx, stmt, u.ID, u.Email, u.Username, u.Image); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	logger.InfoLogger.Infof("User %s created", u.ID)
	return nil
}

func (m *UserModel) Update(ctx context.Context, u *User) error {
	const stmt = `
UPDATE users SET email = $2, username = $3, image = $4, updated_at = NOW()
WHERE id = $1`

	tag, err := m.DB.Exec(ctx, stmt, u.ID, u.Email, u.Username, u.Image)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	logger.InfoLogger.Infof("User %s updated", u.ID)
	return nil
}

// Delete removes a provider user. Deleting an unknown ID is a no-op; the
// provider may replay deletions.
func (m *UserModel) Delete(ctx context.Context, id string) error {
	if _, err := m.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	logger.InfoLogger.Infof("User %s deleted", id)
	return nil
}
