package book

import (
	"fmt"
	"strings"
	"time"
)

// Book is a catalog entry. AverageRating and TotalReviews are derived from
// the book's reviews and only change through RecomputeAggregates.
type Book struct {
	ID            string    `json:"id"`
	ISBN          *string   `json:"isbn,omitempty"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description,omitempty"`
	CoverImage    string    `json:"cover_image,omitempty"`
	Genres        []string  `json:"genres"`
	PublishedYear *int      `json:"published_year,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Input holds the client-writable fields of a book.
type Input struct {
	ISBN          *string  `json:"isbn" validate:"omitempty,isbn"`
	Title         string   `json:"title" validate:"notblank,max=500"`
	Author        string   `json:"author" validate:"notblank,max=300"`
	Description   string   `json:"description" validate:"max=10000"`
	CoverImage    string   `json:"cover_image" validate:"omitempty,url,max=2048"`
	Genres        []string `json:"genres" validate:"max=20,dive,notblank,max=64"`
	PublishedYear *int     `json:"published_year" validate:"omitempty,gte=0,lte=3000"`
}

func (in Input) apply(b *Book) {
	b.ISBN = in.ISBN
	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.Description = strings.TrimSpace(in.Description)
	b.CoverImage = strings.TrimSpace(in.CoverImage)
	b.Genres = normalizeGenres(in.Genres)
	b.PublishedYear = in.PublishedYear
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		key := strings.ToLower(g)
		if g == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}

// Sort fields accepted by List, keyed by their API name.
var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"title":         "title",
	"author":        "author",
	"publishedYear": "published_year",
	"averageRating": "average_rating",
	"totalReviews":  "total_reviews",
}

// Query defines filters and pagination for listing books.
type Query struct {
	Genre         string
	MinRating     *float64
	PublishedYear *int
	Search        string
	SortField     string
	Desc          bool
	Limit         int
	Offset        int
}

// ParseSort reads "field:order", e.g. "averageRating:desc". An empty value
// sorts by createdAt descending.
func ParseSort(raw string) (field string, desc bool, err error) {
	if raw == "" {
		return "createdAt", true, nil
	}
	field, order, _ := strings.Cut(raw, ":")
	if _, ok := sortColumns[field]; !ok {
		return "", false, fmt.Errorf("unsupported sort field %q", field)
	}
	switch strings.ToLower(order) {
	case "", "asc":
		return field, false, nil
	case "desc":
		return field, true, nil
	}
	return "", false, fmt.Errorf("unsupported sort order %q", order)
}
