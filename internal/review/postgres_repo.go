package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/database"
)

const (
	uniqueUserBookConstraint = "reviews_user_id_book_id_key"
	reviewBookFKConstraint   = "reviews_book_id_fkey"
	voteReviewFKConstraint   = "review_votes_review_id_fkey"
)

const selectReviews = `
	SELECT r.id, r.user_id, r.book_id, r.rating, r.body, r.created_at, r.updated_at,
	       u.username, u.profile_picture, b.title, b.author, b.cover_image
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	JOIN books b ON b.id = r.book_id`

type PostgresStore struct {
	db      database.DBTX
	timeout time.Duration
}

func NewPostgresStore(db database.DBTX, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresStore) Insert(ctx context.Context, r *Review) error {
	const query = `
		INSERT INTO reviews (id, user_id, book_id, rating, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.Exec(ctx, query, r.ID, r.UserID, r.BookID, r.Rating, r.Text, r.CreatedAt, r.UpdatedAt)
	if err == nil {
		return nil
	}
	if name, ok := database.ConstraintName(err, pgerrcode.UniqueViolation); ok && name == uniqueUserBookConstraint {
		return apperr.DuplicateReview(r.UserID, r.BookID)
	}
	if name, ok := database.ConstraintName(err, pgerrcode.ForeignKeyViolation); ok {
		if name == reviewBookFKConstraint {
			return apperr.NotFound("book", r.BookID)
		}
		return apperr.NotFound("user", r.UserID)
	}
	return database.Classify(err, "review", r.ID)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Review, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, err := scanReview(s.db.QueryRow(ctx, selectReviews+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, database.Classify(err, "review", id)
	}
	reviews := []Review{r}
	if err := s.loadVotes(ctx, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

func (s *PostgresStore) Update(ctx context.Context, r *Review) error {
	const query = `
		UPDATE reviews SET rating = $3, body = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	tag, err := s.db.Exec(ctx, query, r.ID, r.UserID, r.Rating, r.Text, r.UpdatedAt)
	if err != nil {
		return database.Classify(err, "review", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review", r.ID)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id, authorID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, authorID)
	if err != nil {
		return database.Classify(err, "review", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review", id)
	}
	return nil
}

func (s *PostgresStore) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	return s.listPage(ctx, "r.book_id", bookID, limit, offset)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error) {
	return s.listPage(ctx, "r.user_id", userID, limit, offset)
}

// listPage filters on a fixed column name, never on caller input.
func (s *PostgresStore) listPage(ctx context.Context, column, value string, limit, offset int) ([]Review, int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM reviews r WHERE %s = $1`, column)
	if err := s.db.QueryRow(ctx, countSQL, value).Scan(&total); err != nil {
		return nil, 0, database.Classify(err, "review", value)
	}

	dataSQL := fmt.Sprintf(`%s
		WHERE %s = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3`, selectReviews, column)
	reviews, err := s.query(ctx, dataSQL, value, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *PostgresStore) ListLatest(ctx context.Context, limit int) ([]Review, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.query(ctx, selectReviews+`
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $1`, limit)
}

func (s *PostgresStore) UpsertVote(ctx context.Context, reviewID, voterID string, helpful bool) error {
	const query = `
		INSERT INTO review_votes (review_id, voter_id, helpful, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (review_id, voter_id)
		DO UPDATE SET helpful = EXCLUDED.helpful, updated_at = NOW()`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.Exec(ctx, query, reviewID, voterID, helpful)
	if err == nil {
		return nil
	}
	if name, ok := database.ConstraintName(err, pgerrcode.ForeignKeyViolation); ok {
		if name == voteReviewFKConstraint {
			return apperr.NotFound("review", reviewID)
		}
		return apperr.NotFound("user", voterID)
	}
	return database.Classify(err, "review", reviewID)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Review, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, database.Classify(err, "review", "")
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err, "review", "")
	}
	if err := s.loadVotes(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadVotes fills each review's ledger with a single query.
func (s *PostgresStore) loadVotes(ctx context.Context, reviews []Review) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]string, len(reviews))
	index := make(map[string]int, len(reviews))
	for i := range reviews {
		ids[i] = reviews[i].ID
		index[reviews[i].ID] = i
	}

	rows, err := s.db.Query(ctx, `
		SELECT review_id, voter_id, helpful
		FROM review_votes
		WHERE review_id = ANY($1)
		ORDER BY created_at, voter_id`, ids)
	if err != nil {
		return database.Classify(err, "review", "")
	}
	defer rows.Close()

	for rows.Next() {
		var reviewID string
		var v Vote
		if err := rows.Scan(&reviewID, &v.VoterID, &v.Helpful); err != nil {
			return err
		}
		if i, ok := index[reviewID]; ok {
			reviews[i].Votes = reviews[i].Votes.Upsert(v.VoterID, v.Helpful)
		}
	}
	return rows.Err()
}

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(
		&r.ID, &r.UserID, &r.BookID, &r.Rating, &r.Text, &r.CreatedAt, &r.UpdatedAt,
		&r.Author.Username, &r.Author.ProfilePicture, &r.Book.Title, &r.Book.Author, &r.Book.CoverImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, err
		}
		return Review{}, fmt.Errorf("scan review: %w", err)
	}
	r.Author.ID = r.UserID
	r.Book.ID = r.BookID
	return r, nil
}
