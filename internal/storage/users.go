package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/models"
)

const userColumns = `id, email, username, name, password_hash, email_verified,
	ip_address, created_at, updated_at`

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Username приводится к нижнему регистру на стороне базы.
func (q *Queries) CreateUser(ctx context.Context, u models.User) (uuid.UUID, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, username, name, password_hash, email_verified, ip_address)
			  VALUES ($1, LOWER($2), $3, $4, $5, $6)
			  RETURNING id`
	var id uuid.UUID
	err := q.db.QueryRowContext(ctx, query,
		u.Email, u.Username, u.Name, u.PasswordHash, u.EmailVerified, u.IPAddress).Scan(&id)
	if err != nil {
		if pgErr, ok := uniqueViolation(err); ok {
			if pgErr.ConstraintName == "users_username_key" {
				return uuid.Nil, fmt.Errorf("%s: %w", op, models.Conflict("Username already taken."))
			}
			return uuid.Nil, fmt.Errorf("%s: %w", op, models.Conflict("Email already registered."))
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UserByEmail возвращает пользователя по email.
func (q *Queries) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.user(ctx, "storage.UserByEmail", `WHERE email = $1`, email)
}

// UserByUsername ищет пользователя без учёта регистра.
func (q *Queries) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return q.user(ctx, "storage.UserByUsername", `WHERE username = LOWER($1)`, username)
}

// UserByID возвращает пользователя по ID.
func (q *Queries) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return q.user(ctx, "storage.UserByID", `WHERE id = $1`, id)
}

func (q *Queries) user(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where
	u := &models.User{}
	err := q.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.Name,
		&u.PasswordHash, &u.EmailVerified, &u.IPAddress, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.NotFound("User not found"))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
