package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/apperr"
)

const (
	DefaultLatestLimit = 3
	MaxLatestLimit     = 50
)

// Service coordinates review mutations with rating aggregation.
type Service struct {
	store      Store
	catalog    Catalog
	aggregator *Aggregator
	now        func() time.Time
	newID      func() string
}

func NewService(store Store, catalog Catalog) *Service {
	return &Service{
		store:      store,
		catalog:    catalog,
		aggregator: NewAggregator(catalog),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	if in.AuthorID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	if !isUUID(in.BookID) {
		return nil, apperr.InvalidInput("book_id must be a valid id")
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}

	if _, err := s.catalog.BookRef(ctx, in.BookID); err != nil {
		return nil, fmt.Errorf("resolve book: %w", err)
	}

	now := s.now().UTC()
	r := &Review{
		ID:        s.newID(),
		UserID:    in.AuthorID,
		BookID:    in.BookID,
		Rating:    in.Rating,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	if _, err := s.aggregator.Recompute(ctx, r.BookID); err != nil {
		return nil, err
	}
	return s.get(ctx, r.ID)
}

func (s *Service) Update(ctx context.Context, reviewID, requesterID string, in UpdateInput) (*Review, error) {
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
	}
	var text string
	if in.Text != nil {
		var err error
		if text, err = normalizeText(*in.Text); err != nil {
			return nil, err
		}
	}

	r, err := s.owned(ctx, reviewID, requesterID)
	if err != nil {
		return nil, err
	}

	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Text != nil {
		r.Text = text
	}
	r.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if _, err := s.aggregator.Recompute(ctx, r.BookID); err != nil {
		return nil, err
	}
	return s.get(ctx, r.ID)
}

func (s *Service) Delete(ctx context.Context, reviewID, requesterID string) error {
	r, err := s.owned(ctx, reviewID, requesterID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, r.ID, requesterID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if _, err := s.aggregator.Recompute(ctx, r.BookID); err != nil {
		return err
	}
	return nil
}

// ListByBook returns one page of a book's reviews, newest first, and the
// total number of reviews for the book.
func (s *Service) ListByBook(ctx context.Context, bookID string, page, pageSize int) ([]Review, int, error) {
	if !isUUID(bookID) {
		return nil, 0, apperr.InvalidInput("book_id must be a valid id")
	}
	p := httpx.NormalizePage(page, pageSize)
	reviews, total, err := s.store.ListByBook(ctx, bookID, p.Size, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews by book: %w", err)
	}
	return reviews, total, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]Review, int, error) {
	if !isUUID(userID) {
		return nil, 0, apperr.InvalidInput("user_id must be a valid id")
	}
	p := httpx.NormalizePage(page, pageSize)
	reviews, total, err := s.store.ListByUser(ctx, userID, p.Size, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews by user: %w", err)
	}
	return reviews, total, nil
}

// ListLatest returns the newest reviews across all books.
func (s *Service) ListLatest(ctx context.Context, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	if limit > MaxLatestLimit {
		limit = MaxLatestLimit
	}
	reviews, err := s.store.ListLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list latest reviews: %w", err)
	}
	return reviews, nil
}

// Vote records the voter's opinion, replacing any earlier vote by the same
// voter. Authors may vote on their own reviews.
func (s *Service) Vote(ctx context.Context, reviewID, voterID string, helpful bool) (*Review, error) {
	if voterID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	if _, err := s.get(ctx, reviewID); err != nil {
		return nil, err
	}
	if err := s.store.UpsertVote(ctx, reviewID, voterID, helpful); err != nil {
		return nil, fmt.Errorf("record vote: %w", err)
	}
	return s.get(ctx, reviewID)
}

func (s *Service) Get(ctx context.Context, reviewID string) (*Review, error) {
	return s.get(ctx, reviewID)
}

func (s *Service) get(ctx context.Context, reviewID string) (*Review, error) {
	if !isUUID(reviewID) {
		return nil, apperr.NotFound("review", reviewID)
	}
	r, err := s.store.Get(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// owned loads the review and checks that requesterID wrote it.
func (s *Service) owned(ctx context.Context, reviewID, requesterID string) (*Review, error) {
	if requesterID == "" {
		return nil, apperr.Unauthorized("authentication required")
	}
	r, err := s.get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != requesterID {
		return nil, apperr.Forbidden("only the author can modify this review")
	}
	return r, nil
}
