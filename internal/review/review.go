// Package review keeps a book's rating summary consistent with its reviews.
//
// The Service is the entry point: it enforces one review per (user, book),
// restricts mutation to the author, and recomputes the book's averageRating
// and totalReviews after every create, update or delete. Helpfulness votes
// live in a per-review VoteLedger whose counts are derived on read.
package review

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"bookreview/internal/platform/apperr"
)

const (
	MinRating     = 1
	MaxRating     = 5
	MinTextLength = 10
	MaxTextLength = 5000
)

// AuthorRef is the display reference for a review's author.
type AuthorRef struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// BookRef is the display reference for the reviewed book.
type BookRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverImage string `json:"cover_image,omitempty"`
}

type Review struct {
	ID        string
	UserID    string
	BookID    string
	Rating    int
	Text      string
	Votes     VoteLedger
	Author    AuthorRef
	Book      BookRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Review) HelpfulVotes() int    { return r.Votes.Helpful() }
func (r *Review) NotHelpfulVotes() int { return r.Votes.NotHelpful() }

// CreateInput is what an author submits for a new review.
type CreateInput struct {
	AuthorID string
	BookID   string
	Rating   int
	Text     string
}

// UpdateInput is a partial update; nil fields keep their value.
type UpdateInput struct {
	Rating *int
	Text   *string
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperr.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

// normalizeText trims surrounding whitespace and checks the length in runes.
func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "", apperr.InvalidInput("review text is required")
	case n < MinTextLength:
		return "", apperr.InvalidInput("review text must be at least 10 characters")
	case n > MaxTextLength:
		return "", apperr.InvalidInput("review text must be at most 5000 characters")
	}
	return text, nil
}

func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
