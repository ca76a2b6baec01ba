package books

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

type mockRepo struct {
	books     map[int64]*Book
	nextID    int64
	listCalls int
	seller    *BestSeller
}

func newMockRepo() *mockRepo {
	return &mockRepo{books: make(map[int64]*Book), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, filters ListFilters) ([]Book, error) {
	m.listCalls++
	var out []Book
	for _, b := range m.books {
		if filters.Status != "" && b.Status != filters.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockRepo) Create(ctx context.Context, book Book) (Book, error) {
	book.ID = m.nextID
	m.nextID++
	m.books[book.ID] = &book
	return book, nil
}

func (m *mockRepo) MostSold(ctx context.Context) (*BestSeller, error) {
	if m.seller == nil {
		return nil, httpx.ErrNotFound
	}
	return m.seller, nil
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func validBook() Book {
	return Book{
		Title:       "The Quiet Harbour",
		Description: "A slow-burn mystery.",
		PublishedOn: time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC),
		Price:       14.99,
		Status:      StatusPublished,
	}
}

func TestListServesFromCache(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testCache(t), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, validBook())
	require.NoError(t, err)

	first, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.listCalls)

	second, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls, "second read must come from cache")
}

func TestCreateInvalidatesCachedListings(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testCache(t), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, validBook())
	require.NoError(t, err)

	listed, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	next := validBook()
	next.Title = "Salt and Cinders"
	_, err = svc.Create(ctx, 1, next)
	require.NoError(t, err)

	listed, err = svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, listed, 2, "create must invalidate cached listings")
	assert.Equal(t, 2, repo.listCalls)
}

func TestCreateLogsFailedCacheInvalidation(t *testing.T) {
	repo := newMockRepo()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var logged bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logged, nil))
	svc := NewService(repo, NewCache(client, time.Minute), logger)

	mr.Close()

	created, err := svc.Create(context.Background(), 1, validBook())
	require.NoError(t, err, "an unreachable cache must not fail the write")
	assert.NotZero(t, created.ID)
	assert.Contains(t, logged.String(), "invalidate catalog cache")
}

func TestListWorksWithoutCache(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, validBook())
	require.NoError(t, err)

	listed, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestDistinctFiltersGetDistinctCacheEntries(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testCache(t), nil)
	ctx := context.Background()

	published := validBook()
	draft := validBook()
	draft.Title = "Distributed Drafts"
	draft.Status = StatusDraft
	_, err := svc.Create(ctx, 1, published)
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, draft)
	require.NoError(t, err)

	all, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPublished, err := svc.List(ctx, ListFilters{Status: StatusPublished})
	require.NoError(t, err)
	assert.Len(t, onlyPublished, 1)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Book)
	}{
		{"empty title", func(b *Book) { b.Title = "  " }},
		{"empty description", func(b *Book) { b.Description = "" }},
		{"negative price", func(b *Book) { b.Price = -1 }},
		{"price too high", func(b *Book) { b.Price = 10000 }},
		{"bad status", func(b *Book) { b.Status = "archived" }},
		{"missing publish date", func(b *Book) { b.PublishedOn = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			book := validBook()
			tc.mutate(&book)
			_, err := svc.Create(ctx, 1, book)
			assert.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestCreateDefaultsToDraftAndStampsAuthor(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	book := validBook()
	book.Status = ""
	created, err := svc.Create(context.Background(), 7, book)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, created.Status)
	assert.Equal(t, int64(7), created.AuthorID)
}

func TestListFilterValidation(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)
	ctx := context.Background()

	low, high := 5.0, 10.0
	_, err := svc.List(ctx, ListFilters{MinPrice: &high, MaxPrice: &low})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.List(ctx, ListFilters{OrderBy: "title"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.List(ctx, ListFilters{Status: "archived"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.List(ctx, ListFilters{MinPrice: &low, MaxPrice: &high, OrderBy: "price"})
	assert.NoError(t, err)
}

func TestMostSold(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.MostSold(ctx)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	repo.seller = &BestSeller{BookID: 3, Title: "Practical Go Services", UnitsSold: 12}
	seller, err := svc.MostSold(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), seller.UnitsSold)
}

func TestFilterKeyIsStable(t *testing.T) {
	price := 9.99
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := ListFilters{Title: "harbour", MinPrice: &price, PublishedAfter: &after, Limit: 10}
	assert.Equal(t, FilterKey(f), FilterKey(f))
	assert.NotEqual(t, FilterKey(f), FilterKey(ListFilters{Title: "harbour"}))
}
