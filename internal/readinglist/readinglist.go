// Package readinglist keeps each user's list of favorite books.
package readinglist

import (
	"time"

	"github.com/google/uuid"

	"bookreview/internal/platform/apperr"
)

// Entry is one book on a user's list.
type Entry struct {
	BookID        string    `json:"book_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CoverImage    string    `json:"cover_image,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	AddedAt       time.Time `json:"added_at"`
}

func validateIDs(userID, bookID string) error {
	if uuid.Validate(userID) != nil {
		return apperr.NotFound("user", userID)
	}
	if uuid.Validate(bookID) != nil {
		return apperr.InvalidInput("book_id must be a valid id")
	}
	return nil
}
