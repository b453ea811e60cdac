package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// fixtureSource is an in-memory TransactionSource for a single user.
type fixtureSource struct {
	mu       sync.Mutex
	txs      []models.Transaction
	err      error
	fetches  int
	sumCalls int
}

func (f *fixtureSource) FetchRange(_ context.Context, userID int, start, end time.Time) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Transaction
	for _, t := range f.txs {
		if t.UserID == userID && !t.CreatedAt.Before(start) && !t.CreatedAt.After(end) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fixtureSource) SumFootprintRange(_ context.Context, userID int, start, end time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sumCalls++
	if f.err != nil {
		return 0, f.err
	}
	var sum float64
	for _, t := range f.txs {
		if t.UserID == userID && !t.CreatedAt.Before(start) && t.CreatedAt.Before(end) {
			sum += t.Footprint()
		}
	}
	return sum, nil
}

var errStoreDown = errors.New("store unavailable")

const testUser = 7

// fixedNow is the clock used by every test service.
var fixedNow = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

var march = Query{From: "2025-03-01", To: "2025-03-31"}

func newTestService(txs ...models.Transaction) (*Service, *fixtureSource) {
	src := &fixtureSource{txs: txs}
	return NewService(src, WithClock(func() time.Time { return fixedNow })), src
}

func ptr[T any](v T) *T { return &v }

func day(d int, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

// stored builds a transaction as the store would return it.
func stored(cat models.Category, amount, footprint float64, merchant string, at time.Time) models.Transaction {
	t := models.Transaction{
		UserID:          testUser,
		Description:     "fixture",
		Amount:          ptr(amount),
		Currency:        "EUR",
		CarbonFootprint: ptr(footprint),
		CreatedAt:       at,
	}
	if cat != "" {
		t.Category = ptr(cat)
	}
	if merchant != "" {
		t.Merchant = ptr(merchant)
	}
	return t
}
