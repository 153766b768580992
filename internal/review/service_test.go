package review

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/apperr"
)

const (
	bookA    = "6f1c2d3e-0000-4000-8000-00000000000a"
	userA    = "6f1c2d3e-0000-4000-8000-0000000000a1"
	userB    = "6f1c2d3e-0000-4000-8000-0000000000b1"
	reviewID = "6f1c2d3e-0000-4000-8000-000000000e01"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(ctrl *gomock.Controller) (*Service, *MockStore, *MockCatalog) {
	store := NewMockStore(ctrl)
	catalog := NewMockCatalog(ctrl)
	svc := NewService(store, catalog)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return reviewID }
	return svc, store, catalog
}

func existingReview() *Review {
	return &Review{
		ID:     reviewID,
		UserID: userA,
		BookID: bookA,
		Rating: 3,
		Text:   "A decent read overall.",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists then aggregates then resolves refs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, catalog := newTestService(ctrl)

		stored := existingReview()
		stored.Author = AuthorRef{ID: userA, Username: "alice"}
		stored.Book = BookRef{ID: bookA, Title: "Dune"}

		gomock.InOrder(
			catalog.EXPECT().BookRef(ctx, bookA).Return(BookRef{ID: bookA, Title: "Dune"}, nil),
			store.EXPECT().Insert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, r *Review) error {
				assert.Equal(t, reviewID, r.ID)
				assert.Equal(t, "A decent read overall.", r.Text, "text is trimmed")
				assert.Equal(t, fixedNow, r.CreatedAt)
				return nil
			}),
			catalog.EXPECT().RecomputeAggregates(ctx, bookA).Return(Summary{AverageRating: 4, TotalReviews: 2}, nil),
			store.EXPECT().Get(ctx, reviewID).Return(stored, nil),
		)

		got, err := svc.Create(ctx, CreateInput{AuthorID: userA, BookID: bookA, Rating: 3, Text: "  A decent read overall.  "})
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Author.Username)
		assert.Equal(t, "Dune", got.Book.Title)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _, _ := newTestService(ctrl)

		cases := []CreateInput{
			{AuthorID: userA, BookID: "not-a-uuid", Rating: 3, Text: "long enough text"},
			{AuthorID: userA, BookID: bookA, Rating: 0, Text: "long enough text"},
			{AuthorID: userA, BookID: bookA, Rating: 6, Text: "long enough text"},
			{AuthorID: userA, BookID: bookA, Rating: 4, Text: "   short   "},
			{AuthorID: userA, BookID: bookA, Rating: 4, Text: strings.Repeat("x", MaxTextLength+1)},
		}
		for _, in := range cases {
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _, catalog := newTestService(ctrl)

		catalog.EXPECT().BookRef(ctx, bookA).Return(BookRef{}, apperr.NotFound("book", bookA))

		_, err := svc.Create(ctx, CreateInput{AuthorID: userA, BookID: bookA, Rating: 4, Text: "long enough text"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("duplicate skips aggregation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, catalog := newTestService(ctrl)

		catalog.EXPECT().BookRef(ctx, bookA).Return(BookRef{ID: bookA}, nil)
		store.EXPECT().Insert(ctx, gomock.Any()).Return(apperr.DuplicateReview(userA, bookA))

		_, err := svc.Create(ctx, CreateInput{AuthorID: userA, BookID: bookA, Rating: 4, Text: "long enough text"})
		assert.ErrorIs(t, err, apperr.ErrDuplicateReview)
	})

	t.Run("aggregation failure is surfaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, catalog := newTestService(ctrl)

		catalog.EXPECT().BookRef(ctx, bookA).Return(BookRef{ID: bookA}, nil)
		store.EXPECT().Insert(ctx, gomock.Any()).Return(nil)
		catalog.EXPECT().RecomputeAggregates(ctx, bookA).Return(Summary{}, apperr.Unavailable(errors.New("timeout")))

		_, err := svc.Create(ctx, CreateInput{AuthorID: userA, BookID: bookA, Rating: 4, Text: "long enough text"})
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	})

	t.Run("anonymous author", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _, _ := newTestService(ctrl)

		_, err := svc.Create(ctx, CreateInput{BookID: bookA, Rating: 4, Text: "long enough text"})
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, catalog := newTestService(ctrl)

		rating := 5
		gomock.InOrder(
			store.EXPECT().Get(ctx, reviewID).Return(existingReview(), nil),
			store.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, r *Review) error {
				assert.Equal(t, 5, r.Rating)
				assert.Equal(t, "A decent read overall.", r.Text)
				assert.Equal(t, fixedNow, r.UpdatedAt)
				return nil
			}),
			catalog.EXPECT().RecomputeAggregates(ctx, bookA).Return(Summary{AverageRating: 5, TotalReviews: 1}, nil),
			store.EXPECT().Get(ctx, reviewID).Return(&Review{ID: reviewID, UserID: userA, BookID: bookA, Rating: 5}, nil),
		)

		got, err := svc.Update(ctx, reviewID, userA, UpdateInput{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 5, got.Rating)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, _ := newTestService(ctrl)

		store.EXPECT().Get(ctx, reviewID).Return(existingReview(), nil)

		text := "I rewrote your review"
		_, err := svc.Update(ctx, reviewID, userB, UpdateInput{Text: &text})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("missing review", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, _ := newTestService(ctrl)

		store.EXPECT().Get(ctx, reviewID).Return(nil, apperr.NotFound("review", reviewID))

		rating := 2
		_, err := svc.Update(ctx, reviewID, userA, UpdateInput{Rating: &rating})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("malformed review id is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _, _ := newTestService(ctrl)

		rating := 2
		_, err := svc.Update(ctx, "42", userA, UpdateInput{Rating: &rating})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("invalid rating", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _, _ := newTestService(ctrl)

		rating := 9
		_, err := svc.Update(ctx, reviewID, userA, UpdateInput{Rating: &rating})
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes and book resets", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, catalog := newTestService(ctrl)

		gomock.InOrder(
			store.EXPECT().Get(ctx, reviewID).Return(existingReview(), nil),
			store.EXPECT().Delete(ctx, reviewID, userA).Return(nil),
			catalog.EXPECT().RecomputeAggregates(ctx, bookA).Return(Summary{}, nil),
		)

		require.NoError(t, svc.Delete(ctx, reviewID, userA))
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, _ := newTestService(ctrl)

		store.EXPECT().Get(ctx, reviewID).Return(existingReview(), nil)

		assert.ErrorIs(t, svc.Delete(ctx, reviewID, userB), apperr.ErrForbidden)
	})

	t.Run("store failure is surfaced without aggregation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, _ := newTestService(ctrl)

		store.EXPECT().Get(ctx, reviewID).Return(existingReview(), nil)
		store.EXPECT().Delete(ctx, reviewID, userA).Return(apperr.Unavailable(errors.New("down")))

		assert.ErrorIs(t, svc.Delete(ctx, reviewID, userA), apperr.ErrUnavailable)
	})
}

func TestService_Lists(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	svc, store, _ := newTestService(ctrl)

	store.EXPECT().ListByBook(ctx, bookA, 10, 0).Return([]Review{*existingReview()}, 1, nil)
	reviews, total, err := svc.ListByBook(ctx, bookA, 0, 0)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, total)

	store.EXPECT().ListByUser(ctx, userA, 100, 200).Return(nil, 250, nil)
	_, total, err = svc.ListByUser(ctx, userA, 3, 1000)
	require.NoError(t, err)
	assert.Equal(t, 250, total)

	_, _, err = svc.ListByBook(ctx, "bogus", 1, 10)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	store.EXPECT().ListLatest(ctx, DefaultLatestLimit).Return(nil, nil)
	_, err = svc.ListLatest(ctx, 0)
	require.NoError(t, err)

	store.EXPECT().ListLatest(ctx, MaxLatestLimit).Return(nil, nil)
	_, err = svc.ListLatest(ctx, 1000)
	require.NoError(t, err)
}

func TestService_ListsClampHugePageNumbers(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	svc, store, _ := newTestService(ctrl)

	store.EXPECT().ListByBook(ctx, bookA, 10, httpx.MaxOffset).Return(nil, 3, nil)
	_, total, err := svc.ListByBook(ctx, bookA, math.MaxInt64/5, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	store.EXPECT().ListByUser(ctx, userA, 100, httpx.MaxOffset).Return(nil, 0, nil)
	_, _, err = svc.ListByUser(ctx, userA, math.MaxInt64/5, 100)
	require.NoError(t, err)
}

func TestService_Vote(t *testing.T) {
	ctx := context.Background()

	t.Run("author may vote on own review", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, _ := newTestService(ctrl)

		after := existingReview()
		after.Votes = VoteLedger{{VoterID: userA, Helpful: true}}

		gomock.InOrder(
			store.EXPECT().Get(ctx, reviewID).Return(existingReview(), nil),
			store.EXPECT().UpsertVote(ctx, reviewID, userA, true).Return(nil),
			store.EXPECT().Get(ctx, reviewID).Return(after, nil),
		)

		got, err := svc.Vote(ctx, reviewID, userA, true)
		require.NoError(t, err)
		assert.Equal(t, 1, got.HelpfulVotes())
	})

	t.Run("missing review", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, store, _ := newTestService(ctrl)

		store.EXPECT().Get(ctx, reviewID).Return(nil, apperr.NotFound("review", reviewID))

		_, err := svc.Vote(ctx, reviewID, userB, false)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
