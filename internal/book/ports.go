package book

import (
	"context"

	"bookreview/internal/platform/openlibrary"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Get(ctx context.Context, id string) (Book, error)
	List(ctx context.Context, q Query) ([]Book, int, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id string) error
	RecomputeAggregates(ctx context.Context, id string) (average float64, total int, err error)
}

// Lookup fetches edition metadata from an external catalog.
type Lookup interface {
	GetBookByISBN(ctx context.Context, isbn string) (*openlibrary.BookDetails, error)
}
