package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nemopss/carbon-tracker/backend/emission"
	"github.com/nemopss/carbon-tracker/backend/models"
)

const (
	DefaultMerchantLimit = 10
	unknownCategory      = "Unknown"
)

// ByCategory breaks the window total down per category, largest first.
// Transactions without a category are left out of the groups but still
// count toward the total the percentages are taken from.
func (s *Service) ByCategory(ctx context.Context, userID int, q Query) ([]models.CategoryBreakdown, error) {
	w := s.window(q, periodDefault)
	txs, err := s.source.FetchRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	total := totalFootprint(txs)
	cats := newGroups[models.Category]()
	for _, t := range txs {
		if t.Category == nil {
			continue
		}
		cats.add(*t.Category, t.Footprint())
	}

	breakdown := make([]models.CategoryBreakdown, 0, len(cats.buckets()))
	for _, b := range cats.buckets() {
		breakdown = append(breakdown, models.CategoryBreakdown{
			Category:         string(b.key),
			DisplayName:      emission.DisplayNameOf(b.key),
			TotalCO2:         round(b.sum, 2),
			Percentage:       roundDecimal(share(b.sum, total), 1),
			TransactionCount: b.count,
			Color:            emission.ColorOf(b.key),
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].TotalCO2 != breakdown[j].TotalCO2 {
			return breakdown[i].TotalCO2 > breakdown[j].TotalCO2
		}
		return models.Category(breakdown[i].Category).Rank() < models.Category(breakdown[j].Category).Rank()
	})
	return breakdown, nil
}

// TopMerchants ranks merchants by footprint, largest first, and keeps at most
// limit entries. A limit below one uses DefaultMerchantLimit.
func (s *Service) TopMerchants(ctx context.Context, userID int, q Query, limit int) ([]models.MerchantAnalytics, error) {
	if limit < 1 {
		limit = DefaultMerchantLimit
	}

	w := s.window(q, periodDefault)
	txs, err := s.source.FetchRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	merchants := newGroups[string]()
	categories := make(map[string]map[models.Category]int)
	for _, t := range txs {
		name := t.MerchantName()
		if strings.TrimSpace(name) == "" {
			continue
		}
		merchants.add(name, t.Footprint())
		if t.Category == nil {
			continue
		}
		if categories[name] == nil {
			categories[name] = make(map[models.Category]int)
		}
		categories[name][*t.Category]++
	}

	result := make([]models.MerchantAnalytics, 0, len(merchants.buckets()))
	for _, b := range merchants.buckets() {
		result = append(result, models.MerchantAnalytics{
			MerchantName:     b.key,
			TotalCO2:         round(b.sum, 2),
			TransactionCount: b.count,
			AverageCO2:       round(b.sum/float64(b.count), 2),
			PrimaryCategory:  primaryCategory(categories[b.key]),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalCO2 != result[j].TotalCO2 {
			return result[i].TotalCO2 > result[j].TotalCO2
		}
		return result[i].MerchantName < result[j].MerchantName
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// primaryCategory picks the most frequent category's display name. Equal
// counts go to the category declared first.
func primaryCategory(counts map[models.Category]int) string {
	best, bestCount := models.Category(""), 0
	for _, c := range models.Categories {
		if n := counts[c]; n > bestCount {
			best, bestCount = c, n
		}
	}
	if bestCount == 0 {
		return unknownCategory
	}
	return emission.DisplayNameOf(best)
}
