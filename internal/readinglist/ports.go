package readinglist

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=readinglist

// Repository stores favorites. Add reports apperr.ErrConflict when the book
// is already listed and apperr.ErrNotFound when the book does not exist.
// Remove is a no-op for a book that is not listed.
type Repository interface {
	Add(ctx context.Context, userID, bookID string) error
	Remove(ctx context.Context, userID, bookID string) error
	List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error)
}
