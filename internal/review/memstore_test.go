package review

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/platform/apperr"
)

// memStore keeps reviews and books in memory and acts as both Store and
// Catalog for scenario tests.
type memStore struct {
	mu        sync.Mutex
	reviews   map[string]*Review
	books     map[string]*memBook
	usernames map[string]string
}

type memBook struct {
	ref          BookRef
	average      float64
	totalReviews int
}

func newMemStore() *memStore {
	return &memStore{
		reviews:   map[string]*Review{},
		books:     map[string]*memBook{},
		usernames: map[string]string{},
	}
}

func (m *memStore) addBook(id, title string) {
	m.books[id] = &memBook{ref: BookRef{ID: id, Title: title, Author: "Someone"}}
}

func (m *memStore) addUser(id, username string) {
	m.usernames[id] = username
}

func (m *memStore) resolve(r Review) Review {
	r.Author = AuthorRef{ID: r.UserID, Username: m.usernames[r.UserID]}
	if b, ok := m.books[r.BookID]; ok {
		r.Book = b.ref
	}
	r.Votes = append(VoteLedger(nil), r.Votes...)
	return r
}

func (m *memStore) Insert(_ context.Context, r *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[r.BookID]; !ok {
		return apperr.NotFound("book", r.BookID)
	}
	for _, existing := range m.reviews {
		if existing.UserID == r.UserID && existing.BookID == r.BookID {
			return apperr.DuplicateReview(r.UserID, r.BookID)
		}
	}
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review", id)
	}
	out := m.resolve(*r)
	return &out, nil
}

func (m *memStore) Update(_ context.Context, r *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.reviews[r.ID]
	if !ok || existing.UserID != r.UserID {
		return apperr.NotFound("review", r.ID)
	}
	existing.Rating = r.Rating
	existing.Text = r.Text
	existing.UpdatedAt = r.UpdatedAt
	return nil
}

func (m *memStore) Delete(_ context.Context, id, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.reviews[id]
	if !ok || existing.UserID != authorID {
		return apperr.NotFound("review", id)
	}
	delete(m.reviews, id)
	return nil
}

func (m *memStore) sorted(keep func(*Review) bool) []Review {
	var out []Review
	for _, r := range m.reviews {
		if keep(r) {
			out = append(out, m.resolve(*r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func paginate(all []Review, limit, offset int) []Review {
	if offset < 0 || offset >= len(all) {
		return []Review{}
	}
	end := min(offset+limit, len(all))
	return all[offset:end]
}

func (m *memStore) ListByBook(_ context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(r *Review) bool { return r.BookID == bookID })
	return paginate(all, limit, offset), len(all), nil
}

func (m *memStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(r *Review) bool { return r.UserID == userID })
	return paginate(all, limit, offset), len(all), nil
}

func (m *memStore) ListLatest(_ context.Context, limit int) ([]Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return paginate(m.sorted(func(*Review) bool { return true }), limit, 0), nil
}

func (m *memStore) UpsertVote(_ context.Context, reviewID, voterID string, helpful bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[reviewID]
	if !ok {
		return apperr.NotFound("review", reviewID)
	}
	r.Votes = r.Votes.Upsert(voterID, helpful)
	return nil
}

func (m *memStore) BookRef(_ context.Context, bookID string) (BookRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[bookID]
	if !ok {
		return BookRef{}, apperr.NotFound("book", bookID)
	}
	return b.ref, nil
}

func (m *memStore) RecomputeAggregates(_ context.Context, bookID string) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[bookID]
	if !ok {
		return Summary{}, apperr.NotFound("book", bookID)
	}
	sum, n := 0, 0
	for _, r := range m.reviews {
		if r.BookID == bookID {
			sum += r.Rating
			n++
		}
	}
	b.average, b.totalReviews = 0, n
	if n > 0 {
		b.average = float64(sum) / float64(n)
	}
	return Summary{AverageRating: b.average, TotalReviews: n}, nil
}

func (m *memStore) aggregates(bookID string) (float64, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.books[bookID]
	return b.average, b.totalReviews
}

type scenario struct {
	t     *testing.T
	store *memStore
	svc   *Service
	seq   int
	clock time.Time
}

func newScenario(t *testing.T) *scenario {
	s := &scenario{t: t, store: newMemStore(), clock: fixedNow}
	s.svc = NewService(s.store, s.store)
	s.svc.newID = func() string {
		s.seq++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq)
	}
	s.svc.now = func() time.Time {
		s.clock = s.clock.Add(time.Second)
		return s.clock
	}
	return s
}

func userID(n int) string { return fmt.Sprintf("00000000-0000-4000-9000-%012d", n) }

func (s *scenario) create(user string, book string, rating int) *Review {
	s.t.Helper()
	r, err := s.svc.Create(context.Background(), CreateInput{
		AuthorID: user, BookID: book, Rating: rating, Text: "An honest opinion about this book.",
	})
	require.NoError(s.t, err)
	return r
}

func (s *scenario) assertAggregates(book string, wantAvg float64, wantTotal int) {
	s.t.Helper()
	avg, total := s.store.aggregates(book)
	assert.InDelta(s.t, wantAvg, avg, 1e-9)
	assert.Equal(s.t, wantTotal, total)
}

func TestScenario_AggregatesFollowMutations(t *testing.T) {
	s := newScenario(t)
	s.store.addBook(bookA, "Dune")

	r5 := s.create(userID(1), bookA, 5)
	r3 := s.create(userID(2), bookA, 3)
	s.create(userID(3), bookA, 4)
	s.assertAggregates(bookA, 4.0, 3)

	require.NoError(t, s.svc.Delete(context.Background(), r3.ID, userID(2)))
	s.assertAggregates(bookA, 4.5, 2)

	s.create(userID(4), bookA, 1)
	s.assertAggregates(bookA, 10.0/3.0, 3)

	two := 2
	_, err := s.svc.Update(context.Background(), r5.ID, userID(1), UpdateInput{Rating: &two})
	require.NoError(t, err)
	s.assertAggregates(bookA, 7.0/3.0, 3)
}

func TestScenario_DeletingOnlyReviewResetsBook(t *testing.T) {
	s := newScenario(t)
	s.store.addBook(bookA, "Dune")

	r := s.create(userID(1), bookA, 4)
	s.assertAggregates(bookA, 4, 1)

	require.NoError(t, s.svc.Delete(context.Background(), r.ID, userID(1)))
	s.assertAggregates(bookA, 0, 0)
}

func TestScenario_DuplicateLeavesFirstReviewIntact(t *testing.T) {
	s := newScenario(t)
	s.store.addBook(bookA, "Dune")

	first := s.create(userID(1), bookA, 5)

	_, err := s.svc.Create(context.Background(), CreateInput{
		AuthorID: userID(1), BookID: bookA, Rating: 1, Text: "Changed my mind entirely.",
	})
	require.ErrorIs(t, err, apperr.ErrDuplicateReview)

	got, err := s.svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	s.assertAggregates(bookA, 5, 1)
}

func TestScenario_NonAuthorCannotMutate(t *testing.T) {
	s := newScenario(t)
	s.store.addBook(bookA, "Dune")
	r := s.create(userID(1), bookA, 4)

	one := 1
	_, err := s.svc.Update(context.Background(), r.ID, userID(2), UpdateInput{Rating: &one})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, s.svc.Delete(context.Background(), r.ID, userID(2)), apperr.ErrForbidden)

	got, err := s.svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	s.assertAggregates(bookA, 4, 1)
}

func TestScenario_RevoteReplacesEntry(t *testing.T) {
	s := newScenario(t)
	s.store.addBook(bookA, "Dune")
	r := s.create(userID(1), bookA, 4)
	voter := userID(9)

	_, err := s.svc.Vote(context.Background(), r.ID, voter, true)
	require.NoError(t, err)
	got, err := s.svc.Vote(context.Background(), r.ID, voter, false)
	require.NoError(t, err)

	assert.Equal(t, 0, got.HelpfulVotes())
	assert.Equal(t, 1, got.NotHelpfulVotes())
	assert.Len(t, got.Votes, 1)

	_, err = s.svc.Vote(context.Background(), "00000000-0000-4000-8000-999999999999", voter, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestScenario_ListsAreNewestFirstWithFullTotals(t *testing.T) {
	s := newScenario(t)
	s.store.addBook(bookA, "Dune")
	s.store.addUser(userID(1), "alice")

	var ids []string
	for i := 1; i <= 5; i++ {
		ids = append(ids, s.create(userID(i), bookA, 3).ID)
	}

	page, total, err := s.svc.ListByBook(context.Background(), bookA, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.Equal(t, "Dune", page[0].Book.Title)

	byUser, total, err := s.svc.ListByUser(context.Background(), userID(1), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "alice", byUser[0].Author.Username)

	latest, err := s.svc.ListLatest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, latest, DefaultLatestLimit)
	assert.Equal(t, ids[4], latest[0].ID)
}

// Random create/update/delete sequences must always leave each book's
// summary equal to the mean and count of its current reviews.
func TestProperty_AggregatesMatchCurrentReviews(t *testing.T) {
	books := []string{bookA, "6f1c2d3e-0000-4000-8000-00000000000b"}
	rng := rand.New(rand.NewPCG(7, 11))

	for round := range 20 {
		t.Run(fmt.Sprintf("round_%d", round), func(t *testing.T) {
			s := newScenario(t)
			for _, b := range books {
				s.store.addBook(b, "Book "+b[len(b)-1:])
			}
			ctx := context.Background()
			live := map[string]*Review{}

			for range 60 {
				user := userID(rng.IntN(8))
				book := books[rng.IntN(len(books))]
				rating := 1 + rng.IntN(5)

				switch op := rng.IntN(3); {
				case op == 0 || len(live) == 0:
					r, err := s.svc.Create(ctx, CreateInput{AuthorID: user, BookID: book, Rating: rating, Text: "Randomised review text."})
					if err != nil {
						require.ErrorIs(t, err, apperr.ErrDuplicateReview)
						continue
					}
					live[r.ID] = r
				case op == 1:
					r := pick(rng, live)
					_, err := s.svc.Update(ctx, r.ID, r.UserID, UpdateInput{Rating: &rating})
					require.NoError(t, err)
					r.Rating = rating
				default:
					r := pick(rng, live)
					require.NoError(t, s.svc.Delete(ctx, r.ID, r.UserID))
					delete(live, r.ID)
				}

				for _, b := range books {
					sum, n := 0, 0
					for _, r := range live {
						if r.BookID == b {
							sum += r.Rating
							n++
						}
					}
					want := 0.0
					if n > 0 {
						want = float64(sum) / float64(n)
					}
					avg, total := s.store.aggregates(b)
					require.Equal(t, n, total)
					require.True(t, math.Abs(want-avg) < 1e-9, "book %s: want %v got %v", b, want, avg)
				}
			}
		})
	}
}

func pick(rng *rand.Rand, live map[string]*Review) *Review {
	ids := make([]string, 0, len(live))
	for id := range live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return live[ids[rng.IntN(len(ids))]]
}
