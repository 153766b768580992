package review

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=review

// Store persists reviews and their vote ledgers.
//
// Insert must reject a second review for the same (user, book) pair with
// apperr.ErrDuplicateReview using the store's own uniqueness guarantee.
// Update and Delete only touch a row whose author is the given user and
// report apperr.ErrNotFound otherwise. Reads return reviews with Author,
// Book and Votes populated.
type Store interface {
	Insert(ctx context.Context, r *Review) error
	Get(ctx context.Context, id string) (*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id, authorID string) error
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error)
	ListLatest(ctx context.Context, limit int) ([]Review, error)
	UpsertVote(ctx context.Context, reviewID, voterID string, helpful bool) error
}

// Catalog is the book store as seen by reviews.
type Catalog interface {
	// BookRef resolves a book or fails with apperr.ErrNotFound.
	BookRef(ctx context.Context, bookID string) (BookRef, error)
	// RecomputeAggregates is the only writer of a book's derived rating
	// fields. It derives them from the reviews committed so far and returns
	// what it stored.
	RecomputeAggregates(ctx context.Context, bookID string) (Summary, error)
}
