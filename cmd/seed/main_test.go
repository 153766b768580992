package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/apperr"
)

type fakeCreator struct {
	existing map[string]bool
	failOn   string
}

func (f *fakeCreator) Create(_ context.Context, in book.Input) (book.Book, error) {
	if in.Title == f.failOn {
		return book.Book{}, errors.New("boom")
	}
	if in.ISBN != nil && f.existing[*in.ISBN] {
		return book.Book{}, apperr.Conflict("a book with this ISBN already exists")
	}
	return book.Book{Title: in.Title}, nil
}

func TestSeedBooks_SkipsExisting(t *testing.T) {
	f := &fakeCreator{existing: map[string]bool{"9780441013593": true}}

	created, skipped, err := seedBooks(context.Background(), f, sampleBooks())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, len(sampleBooks())-1, created)
}

func TestSeedBooks_StopsOnFailure(t *testing.T) {
	f := &fakeCreator{failOn: "1984"}

	created, _, err := seedBooks(context.Background(), f, sampleBooks())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1984")
	assert.Equal(t, 2, created)
}

func TestSampleBooks_AreValid(t *testing.T) {
	for _, in := range sampleBooks() {
		assert.Empty(t, httpx.ValidateStruct(in), in.Title)
	}
}
