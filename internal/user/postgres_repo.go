package user

import (
	"context"
	"time"

	"github.com/jackc/pgerrcode"

	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/database"
)

const userColumns = `id, email, username, profile_picture, password_hash, role, created_at, updated_at`

type PostgresRepo struct {
	db      database.DBTX
	timeout time.Duration
}

func NewPostgresRepo(db database.DBTX, timeout time.Duration) *PostgresRepo {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (id, email, username, password_hash, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx, query, u.ID, u.Email, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	return classifyWrite(err, u.ID)
}

// Update rewrites the editable profile fields.
func (r *PostgresRepo) Update(ctx context.Context, u *User) error {
	const query = `
	UPDATE users SET email = $2, username = $3, profile_picture = $4, updated_at = $5
	WHERE id = $1
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(ctx, query, u.ID, u.Email, u.Username, u.ProfilePicture, u.UpdatedAt)
	if err != nil {
		return classifyWrite(err, u.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user", u.ID)
	}
	return nil
}

func classifyWrite(err error, id string) error {
	if err == nil {
		return nil
	}
	if name, ok := database.ConstraintName(err, pgerrcode.UniqueViolation); ok {
		if name == "users_username_key" {
			return apperr.Conflict("username is already taken")
		}
		return apperr.Conflict("email is already registered")
	}
	return database.Classify(err, "user", id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, "lower(email) = lower($1)", email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getBy(ctx, "id = $1", id)
}

// getBy takes a fixed predicate, never caller input.
func (r *PostgresRepo) getBy(ctx context.Context, predicate, value string) (User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+predicate+" LIMIT 1", value).Scan(
		&u.ID, &u.Email, &u.Username, &u.ProfilePicture, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, database.Classify(err, "user", value)
	}
	return u, nil
}
