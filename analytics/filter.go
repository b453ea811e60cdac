package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// Filter holds the optional listing predicates. Nil fields are inactive.
// A transaction lacking the field an active predicate inspects never
// matches it.
type Filter struct {
	Category  *models.Category
	Merchant  *string
	MinAmount *float64
	MaxAmount *float64
}

func (f Filter) Match(t models.Transaction) bool {
	if f.Category != nil && (t.Category == nil || *t.Category != *f.Category) {
		return false
	}
	if f.Merchant != nil {
		if t.Merchant == nil || !strings.Contains(strings.ToLower(*t.Merchant), strings.ToLower(*f.Merchant)) {
			return false
		}
	}
	// Bounds are checked in the affirmative so a NaN bound matches nothing.
	if f.MinAmount != nil && (t.Amount == nil || !(*t.Amount >= *f.MinAmount)) {
		return false
	}
	if f.MaxAmount != nil && (t.Amount == nil || !(*t.Amount <= *f.MaxAmount)) {
		return false
	}
	return true
}

// Transactions lists the window's transactions matching every active
// predicate of f, newest first. The default window is the trailing month.
func (s *Service) Transactions(ctx context.Context, userID int, q Query, f Filter) ([]models.Transaction, error) {
	w := s.window(q, listingDefault)
	txs, err := s.source.FetchRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	matched := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}
