package authors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

type mockRepository struct {
	bios     map[int64]string
	earnings []Earnings
	counts   []BookCount
	idle     []Author
	sales    []SalesCount
	books    map[string][]AuthorBook
	unsold   map[string][]UnsoldBook
	averages []AveragePrice

	topLimit  int
	countsMin int64
	salesMin  int64
	updateErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		bios:   make(map[int64]string),
		books:  make(map[string][]AuthorBook),
		unsold: make(map[string][]UnsoldBook),
	}
}

func (m *mockRepository) UpdateBio(ctx context.Context, authorID int64, bio string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.bios[authorID] = bio
	return nil
}

func (m *mockRepository) Earnings(ctx context.Context) ([]Earnings, error) {
	return m.earnings, nil
}

func (m *mockRepository) TopEarners(ctx context.Context, limit int) ([]Earnings, error) {
	m.topLimit = limit
	if limit < len(m.earnings) {
		return m.earnings[:limit], nil
	}
	return m.earnings, nil
}

func (m *mockRepository) CountsAbove(ctx context.Context, minBooks int64) ([]BookCount, error) {
	m.countsMin = minBooks
	return m.counts, nil
}

func (m *mockRepository) WithoutPublishedBooks(ctx context.Context) ([]Author, error) {
	return m.idle, nil
}

func (m *mockRepository) SoldAtLeast(ctx context.Context, minUnits int64) ([]SalesCount, error) {
	m.salesMin = minUnits
	return m.sales, nil
}

func (m *mockRepository) BooksByAuthor(ctx context.Context, name string) ([]AuthorBook, error) {
	books, ok := m.books[name]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return books, nil
}

func (m *mockRepository) UnsoldByAuthor(ctx context.Context, name string) ([]UnsoldBook, error) {
	books, ok := m.unsold[name]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return books, nil
}

func (m *mockRepository) AveragePrices(ctx context.Context) ([]AveragePrice, error) {
	return m.averages, nil
}

func TestUpdateBiography(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	require.NoError(t, service.UpdateBiography(context.Background(), 7, "Writes maritime thrillers."))
	assert.Equal(t, "Writes maritime thrillers.", repo.bios[7])
}

func TestUpdateBiographyRejectsBlank(t *testing.T) {
	service := NewService(newMockRepository())

	err := service.UpdateBiography(context.Background(), 7, "   ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateBiographyUnknownAuthor(t *testing.T) {
	repo := newMockRepository()
	repo.updateErr = httpx.ErrNotFound
	service := NewService(repo)

	err := service.UpdateBiography(context.Background(), 404, "bio")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestTopPaidCapsLeaderboard(t *testing.T) {
	repo := newMockRepository()
	repo.earnings = []Earnings{
		{AuthorID: 1, Name: "a", Revenue: 400},
		{AuthorID: 2, Name: "b", Revenue: 300},
		{AuthorID: 3, Name: "c", Revenue: 200},
		{AuthorID: 4, Name: "d", Revenue: 100},
	}
	service := NewService(repo)

	top, err := service.TopPaid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TopPaidLimit, repo.topLimit)
	require.Len(t, top, 3)
	assert.Equal(t, int64(1), top[0].AuthorID)
}

func TestProlificAuthorsThreshold(t *testing.T) {
	repo := newMockRepository()
	repo.counts = []BookCount{{AuthorID: 2, Name: "b", Books: 5}}
	service := NewService(repo)

	cases := map[string]struct {
		min     int64
		wantErr bool
	}{
		"zero":      {min: 0, wantErr: true},
		"negative":  {min: -3, wantErr: true},
		"too large": {min: MaxBookThreshold + 1, wantErr: true},
		"valid":     {min: 2, wantErr: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := service.ProlificAuthors(context.Background(), tc.min)
			if tc.wantErr {
				require.ErrorIs(t, err, httpx.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.min, repo.countsMin)
			assert.Len(t, result, 1)
		})
	}
}

func TestSoldAtLeastThreshold(t *testing.T) {
	repo := newMockRepository()
	repo.sales = []SalesCount{{AuthorID: 3, Name: "c", UnitsSold: 12}}
	service := NewService(repo)

	_, err := service.SoldAtLeast(context.Background(), -1)
	require.ErrorIs(t, err, httpx.ErrValidation)

	result, err := service.SoldAtLeast(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), repo.salesMin)
	require.Len(t, result, 1)
	assert.Equal(t, int64(12), result[0].UnitsSold)
}

func TestBooksRequiresAuthorName(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.Books(context.Background(), "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.UnsoldBooks(context.Background(), " ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBooksUnknownAuthor(t *testing.T) {
	service := NewService(newMockRepository())

	_, err := service.Books(context.Background(), "nobody")
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = service.UnsoldBooks(context.Background(), "nobody")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestBooksReturnsSalesOrder(t *testing.T) {
	repo := newMockRepository()
	repo.books["Nora Quill"] = []AuthorBook{
		{BookID: 1, Title: "Tides", UnitsSold: 9},
		{BookID: 2, Title: "Harbors", UnitsSold: 2},
	}
	repo.unsold["Nora Quill"] = []UnsoldBook{{BookID: 3, Title: "Drafts", Price: 12.50}}
	service := NewService(repo)

	books, err := service.Books(context.Background(), "Nora Quill")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Tides", books[0].Title)

	unsold, err := service.UnsoldBooks(context.Background(), "Nora Quill")
	require.NoError(t, err)
	require.Len(t, unsold, 1)
	assert.Equal(t, "Drafts", unsold[0].Title)
}
