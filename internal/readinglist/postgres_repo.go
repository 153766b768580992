package readinglist

import (
	"context"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/database"
)

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

func (r *PostgresRepo) Add(ctx context.Context, userID, bookID string) error {
	const query = `
		INSERT INTO user_favorites (user_id, book_id, created_at)
		VALUES ($1, $2, NOW())`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx, query, userID, bookID)
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("book is already in favorites")
	}
	if name, ok := database.ConstraintName(err, pgerrcode.ForeignKeyViolation); ok && name == "user_favorites_user_id_fkey" {
		return apperr.NotFound("user", userID)
	}
	return database.Classify(err, "book", bookID)
}

func (r *PostgresRepo) Remove(ctx context.Context, userID, bookID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return database.Classify(err, "book", bookID)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	const countSQL = `SELECT COUNT(*) FROM user_favorites WHERE user_id = $1`
	const dataSQL = `
		SELECT b.id, b.title, b.author, b.cover_image, b.average_rating, b.total_reviews, f.created_at
		FROM user_favorites f
		JOIN books b ON b.id = f.book_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, b.id
		LIMIT $2 OFFSET $3`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, countSQL, userID).Scan(&total); err != nil {
		return nil, 0, database.Classify(err, "user", userID)
	}

	rows, err := r.db.Query(ctx, dataSQL, userID, limit, offset)
	if err != nil {
		return nil, 0, database.Classify(err, "user", userID)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.BookID, &e.Title, &e.Author, &e.CoverImage, &e.AverageRating, &e.TotalReviews, &e.AddedAt)
		return e, err
	})
	if err != nil {
		return nil, 0, database.Classify(err, "user", userID)
	}
	return entries, total, nil
}
