package review

import (
	"context"
	"fmt"
)

// Summary is a book's derived rating state.
type Summary struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Aggregator refreshes a book's summary from its current reviews. It must
// run after the review write has committed. The catalog computes the
// unrounded mean and count itself, 0/0 when the book has no reviews.
type Aggregator struct {
	catalog Catalog
}

func NewAggregator(catalog Catalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

func (a *Aggregator) Recompute(ctx context.Context, bookID string) (Summary, error) {
	s, err := a.catalog.RecomputeAggregates(ctx, bookID)
	if err != nil {
		return Summary{}, fmt.Errorf("recompute aggregates for book %s: %w", bookID, err)
	}
	return s, nil
}
