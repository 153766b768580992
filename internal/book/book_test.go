package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw      string
		field    string
		desc     bool
		wantsErr bool
	}{
		{"", "createdAt", true, false},
		{"title", "title", false, false},
		{"averageRating:desc", "averageRating", true, false},
		{"publishedYear:ASC", "publishedYear", false, false},
		{"password:asc", "", false, true},
		{"title:sideways", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			field, desc, err := ParseSort(tt.raw)
			if tt.wantsErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func TestInputApply(t *testing.T) {
	b := Book{ID: "keep", AverageRating: 4.2, TotalReviews: 7}
	Input{
		Title:  "  Dune ",
		Author: "Frank Herbert",
		Genres: []string{"Sci-Fi", " sci-fi", "", "Classic"},
	}.apply(&b)

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, []string{"Sci-Fi", "Classic"}, b.Genres)
	assert.Equal(t, 4.2, b.AverageRating, "aggregates are not client-writable")
	assert.Equal(t, 7, b.TotalReviews)
}
