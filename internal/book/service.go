package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/openlibrary"
	"bookreview/internal/review"
)

// Service provides catalog operations. It also serves as the catalog
// collaborator of the review package.
type Service struct {
	repo   Repository
	lookup Lookup
	now    func() time.Time
	newID  func() string
}

var _ review.Catalog = (*Service)(nil)

// NewService creates a new book service. lookup may be nil, in which case
// Import is unavailable.
func NewService(repo Repository, lookup Lookup) *Service {
	return &Service{repo: repo, lookup: lookup, now: time.Now, newID: uuid.NewString}
}

func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	if uuid.Validate(id) != nil {
		return Book{}, apperr.NotFound("book", id)
	}
	return s.repo.Get(ctx, id)
}

// List returns a list of books matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	if q.MinRating != nil && (*q.MinRating < 0 || *q.MinRating > 5) {
		return nil, 0, apperr.InvalidInput("min_rating must be between 0 and 5")
	}
	if q.SortField == "" {
		q.SortField, q.Desc = "createdAt", true
	}
	return s.repo.List(ctx, q)
}

// Create adds a book. Rating aggregates always start at zero.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	now := s.now().UTC()
	b := Book{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	in.apply(&b)
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

// Update replaces the writable fields of a book and keeps its aggregates.
func (s *Service) Update(ctx context.Context, id string, in Input) (Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	in.apply(&b)
	b.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &b); err != nil {
		return Book{}, fmt.Errorf("update book: %w", err)
	}
	return b, nil
}

// Delete removes a book; its reviews and votes go with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return apperr.NotFound("book", id)
	}
	return s.repo.Delete(ctx, id)
}

// Import creates a book from the external catalog's record for isbn.
func (s *Service) Import(ctx context.Context, isbn string) (Book, error) {
	if s.lookup == nil {
		return Book{}, apperr.Unavailable(errors.New("book import is not configured"))
	}
	details, err := s.lookup.GetBookByISBN(ctx, isbn)
	switch {
	case errors.Is(err, openlibrary.ErrNotFound):
		return Book{}, apperr.NotFound("isbn", isbn)
	case errors.Is(err, context.Canceled):
		return Book{}, err
	case err != nil:
		return Book{}, apperr.Unavailable(fmt.Errorf("lookup isbn %s: %w", isbn, err))
	}
	return s.Create(ctx, inputFromDetails(isbn, details))
}

func inputFromDetails(isbn string, d *openlibrary.BookDetails) Input {
	in := Input{
		ISBN:        &isbn,
		Title:       d.Title,
		Description: d.NotesText(),
		CoverImage:  d.Cover.Large,
	}
	if d.Subtitle != "" {
		in.Title = d.Title + ": " + d.Subtitle
	}
	if len(d.Authors) > 0 {
		in.Author = d.Authors[0].Name
	}
	if in.Author == "" {
		in.Author = "Unknown"
	}
	if in.CoverImage == "" {
		in.CoverImage = d.Cover.Medium
	}
	for _, subj := range d.Subjects {
		if len(in.Genres) == 5 {
			break
		}
		if name := strings.TrimSpace(subj.Name); name != "" {
			in.Genres = append(in.Genres, name)
		}
	}
	if year, ok := d.PublishYear(); ok {
		in.PublishedYear = &year
	}
	return in
}

// BookRef resolves the display reference used on reviews.
func (s *Service) BookRef(ctx context.Context, bookID string) (review.BookRef, error) {
	b, err := s.Get(ctx, bookID)
	if err != nil {
		return review.BookRef{}, err
	}
	return review.BookRef{ID: b.ID, Title: b.Title, Author: b.Author, CoverImage: b.CoverImage}, nil
}

// RecomputeAggregates refreshes the derived rating fields from the book's
// current reviews.
func (s *Service) RecomputeAggregates(ctx context.Context, bookID string) (review.Summary, error) {
	average, total, err := s.repo.RecomputeAggregates(ctx, bookID)
	if err != nil {
		return review.Summary{}, err
	}
	return review.Summary{AverageRating: average, TotalReviews: total}, nil
}
