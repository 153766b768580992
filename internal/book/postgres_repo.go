package book

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/database"
)

const bookColumns = `id, isbn, title, author, description, cover_image, genres,
	published_year, average_rating, total_reviews, created_at, updated_at`

type PostgresRepo struct {
	db      database.TxStarter
	timeout time.Duration
}

func NewPostgresRepo(db database.TxStarter, timeout time.Duration) *PostgresRepo {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(genres)", argn))
		args = append(args, q.Genre)
		argn++
	}

	if q.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("average_rating >= $%d", argn))
		args = append(args, *q.MinRating)
		argn++
	}

	if q.PublishedYear != nil {
		clauses = append(clauses, fmt.Sprintf("published_year = $%d", argn))
		args = append(args, *q.PublishedYear)
		argn++
	}

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argn, argn))
		args = append(args, "%"+likeEscaper.Replace(q.Search)+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	sortCol, ok := sortColumns[q.SortField]
	if !ok {
		sortCol = "created_at"
	}
	order := "ASC"
	if q.Desc {
		order = "DESC"
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	countSQL := "SELECT COUNT(*) FROM books " + where
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, database.Classify(err, "book", "")
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY %s %s NULLS LAST, id
		LIMIT $%d OFFSET $%d`,
		bookColumns, where, sortCol, order, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(ctx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, database.Classify(err, "book", "")
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(ctx, "SELECT "+bookColumns+" FROM books WHERE id = $1", id))
	if err != nil {
		return Book{}, database.Classify(err, "book", id)
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (id, isbn, title, author, description, cover_image, genres,
		                   published_year, average_rating, total_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10)`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx, query,
		b.ID, b.ISBN, b.Title, b.Author, b.Description, b.CoverImage, b.Genres,
		b.PublishedYear, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("a book with this ISBN already exists")
		}
		return database.Classify(err, "book", b.ID)
	}
	b.AverageRating, b.TotalReviews = 0, 0
	return nil
}

// Update writes the client-editable columns only.
func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const query = `
		UPDATE books
		SET isbn = $2, title = $3, author = $4, description = $5, cover_image = $6,
		    genres = $7, published_year = $8, updated_at = $9
		WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(ctx, query,
		b.ID, b.ISBN, b.Title, b.Author, b.Description, b.CoverImage, b.Genres,
		b.PublishedYear, b.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("a book with this ISBN already exists")
		}
		return database.Classify(err, "book", b.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("book", b.ID)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return database.Classify(err, "book", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("book", id)
	}
	return nil
}

// RecomputeAggregates rewrites average_rating and total_reviews from the
// book's current reviews and returns the stored values.
func (r *PostgresRepo) RecomputeAggregates(ctx context.Context, id string) (float64, int, error) {
	const lockSQL = `SELECT id FROM books WHERE id = $1 FOR UPDATE`
	const updateSQL = `
		UPDATE books SET (average_rating, total_reviews, updated_at) = (
			SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)::int, NOW()
			FROM reviews WHERE book_id = $1
		)
		WHERE id = $1
		RETURNING average_rating, total_reviews`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, database.Classify(err, "book", id)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Holding the row lock means the update below reads every review
	// committed before an earlier recompute of the same book finished.
	var locked string
	if err := tx.QueryRow(ctx, lockSQL, id).Scan(&locked); err != nil {
		return 0, 0, database.Classify(err, "book", id)
	}

	var average float64
	var total int
	if err := tx.QueryRow(ctx, updateSQL, id).Scan(&average, &total); err != nil {
		return 0, 0, database.Classify(err, "book", id)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, database.Classify(err, "book", id)
	}
	return average, total, nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Description, &b.CoverImage, &b.Genres,
		&b.PublishedYear, &b.AverageRating, &b.TotalReviews, &b.CreatedAt, &b.UpdatedAt,
	)
	if b.Genres == nil {
		b.Genres = []string{}
	}
	return b, err
}
