package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
	"github.com/bookhaven/bookhaven/jobs"
)

type mockRepository struct {
	books    map[int64]BookInfo
	emails   map[int64]string
	balances map[int64]float64
	placed   []*Order
	history  map[int64][]Order
	spenders []Spender

	nextOrderID int64
	placeErr    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		books:       make(map[int64]BookInfo),
		emails:      make(map[int64]string),
		balances:    make(map[int64]float64),
		history:     make(map[int64][]Order),
		nextOrderID: 1,
	}
}

func (m *mockRepository) BookInfo(ctx context.Context, ids []int64) (map[int64]BookInfo, error) {
	out := make(map[int64]BookInfo, len(ids))
	for _, id := range ids {
		if b, ok := m.books[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (m *mockRepository) UserEmail(ctx context.Context, id int64) (string, error) {
	email, ok := m.emails[id]
	if !ok {
		return "", httpx.ErrNotFound
	}
	return email, nil
}

func (m *mockRepository) Place(ctx context.Context, order *Order) error {
	if m.placeErr != nil {
		return m.placeErr
	}
	if balance, ok := m.balances[order.UserID]; ok && balance < order.TotalPrice {
		return ErrInsufficientBalance
	}
	order.ID = m.nextOrderID
	m.nextOrderID++
	m.placed = append(m.placed, order)
	return nil
}

func (m *mockRepository) HistoryByUser(ctx context.Context, userID int64) ([]Order, error) {
	return m.history[userID], nil
}

func (m *mockRepository) TopSpenders(ctx context.Context, minTotal float64) ([]Spender, error) {
	return m.spenders, nil
}

type mockDispatcher struct {
	payloads []jobs.OrderReceiptPayload
	err      error
}

func (m *mockDispatcher) EnqueueOrderReceipt(ctx context.Context, payload jobs.OrderReceiptPayload) error {
	if m.err != nil {
		return m.err
	}
	m.payloads = append(m.payloads, payload)
	return nil
}

func seededRepo() *mockRepository {
	repo := newMockRepository()
	repo.books[1] = BookInfo{ID: 1, AuthorID: 10, Title: "The Quiet Harbour", Price: 14.99, Status: "published"}
	repo.books[2] = BookInfo{ID: 2, AuthorID: 11, Title: "Practical Go Services", Price: 32.00, Status: "published"}
	repo.books[3] = BookInfo{ID: 3, AuthorID: 11, Title: "Distributed Drafts", Price: 19.99, Status: "draft"}
	repo.emails[5] = "rita@example.com"
	return repo
}

func TestPlaceComputesTotals(t *testing.T) {
	repo := seededRepo()
	dispatcher := &mockDispatcher{}
	svc := NewService(repo, dispatcher, nil)

	order, err := svc.Place(context.Background(), 5, []LineInput{
		{BookID: 1, Quantity: 2},
		{BookID: 2, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, StatusPaid, order.Status)
	assert.Equal(t, 29.98, order.Items[0].LineTotal)
	assert.Equal(t, 14.99, order.Items[0].UnitPrice)
	assert.Equal(t, 32.00, order.Items[1].LineTotal)
	assert.Equal(t, 61.98, order.TotalPrice)
	require.Len(t, repo.placed, 1)
}

func TestPlaceMergesDuplicateLines(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil)

	order, err := svc.Place(context.Background(), 5, []LineInput{
		{BookID: 1, Quantity: 1},
		{BookID: 1, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 44.97, order.Items[0].LineTotal)
}

func TestPlaceRejectsBadInput(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Place(ctx, 5, nil)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Place(ctx, 5, []LineInput{{BookID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Place(ctx, 5, []LineInput{{BookID: 99, Quantity: 1}})
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Place(ctx, 5, []LineInput{{BookID: 3, Quantity: 1}})
	assert.ErrorIs(t, err, httpx.ErrValidation, "draft books cannot be bought")

	assert.Empty(t, repo.placed)
}

func TestPlaceSurfacesInsufficientBalance(t *testing.T) {
	repo := seededRepo()
	repo.balances[5] = 10
	svc := NewService(repo, nil, nil)

	_, err := svc.Place(context.Background(), 5, []LineInput{{BookID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPlaceEnqueuesReceipt(t *testing.T) {
	repo := seededRepo()
	dispatcher := &mockDispatcher{}
	svc := NewService(repo, dispatcher, nil)

	order, err := svc.Place(context.Background(), 5, []LineInput{{BookID: 1, Quantity: 2}})
	require.NoError(t, err)

	require.Len(t, dispatcher.payloads, 1)
	payload := dispatcher.payloads[0]
	assert.Equal(t, order.ID, payload.OrderID)
	assert.Equal(t, "rita@example.com", payload.Email)
	assert.Equal(t, order.TotalPrice, payload.Total)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "The Quiet Harbour", payload.Items[0].Title)
	assert.Equal(t, 29.98, payload.Items[0].LineTotal)
}

func TestPlaceSucceedsWhenReceiptEnqueueFails(t *testing.T) {
	repo := seededRepo()
	dispatcher := &mockDispatcher{err: assert.AnError}
	svc := NewService(repo, dispatcher, nil)

	_, err := svc.Place(context.Background(), 5, []LineInput{{BookID: 1, Quantity: 1}})
	assert.NoError(t, err)
}

func TestPlaceSkipsReceiptForUnknownEmail(t *testing.T) {
	repo := seededRepo()
	delete(repo.emails, 5)
	dispatcher := &mockDispatcher{}
	svc := NewService(repo, dispatcher, nil)

	_, err := svc.Place(context.Background(), 5, []LineInput{{BookID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.payloads)
}

func TestHistory(t *testing.T) {
	repo := seededRepo()
	repo.history[5] = []Order{{ID: 2, UserID: 5}, {ID: 1, UserID: 5}}
	svc := NewService(repo, nil, nil)

	orders, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestTopSpenders(t *testing.T) {
	repo := seededRepo()
	repo.spenders = []Spender{{UserID: 5, Name: "rita", TotalSpent: 120}}
	svc := NewService(repo, nil, nil)

	spenders, err := svc.TopSpenders(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, spenders, 1)

	_, err = svc.TopSpenders(context.Background(), -1)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
