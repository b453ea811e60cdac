package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nemopss/carbon-tracker/backend/emission"
	"github.com/nemopss/carbon-tracker/backend/models"
)

var (
	dominantCategoryThreshold = decimal.NewFromInt(30)
	merchantShareThreshold    = decimal.NewFromInt(25)
	evolutionThreshold        = decimal.NewFromInt(10)
)

// insightSnapshot is what every rule sees. Rules never touch the store.
type insightSnapshot struct {
	total         float64
	categories    []*bucket[models.Category]
	merchants     []*bucket[string]
	previousTotal float64
}

type insightRule func(insightSnapshot) []models.Insight

// insightRules run in this order; their outputs are concatenated.
var insightRules = []insightRule{
	dominantCategoryRule,
	evolutionRule,
	concentratedMerchantRule,
}

// Insights derives textual observations for the window, 30 days by default.
// An empty window yields a single prompt to start tracking.
func (s *Service) Insights(ctx context.Context, userID int, q Query) ([]models.Insight, error) {
	w := s.window(q, periodDefault)
	txs, err := s.source.FetchRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	if len(txs) == 0 {
		return []models.Insight{startTrackingInsight()}, nil
	}

	prev := w.Previous()
	previousTotal, err := s.source.SumFootprintRange(ctx, userID, prev.Start, prev.End)
	if err != nil {
		return nil, fmt.Errorf("sum previous period: %w", err)
	}

	snap := insightSnapshot{
		total:         totalFootprint(txs),
		categories:    footprintByCategory(txs).buckets(),
		merchants:     footprintByMerchant(txs).buckets(),
		previousTotal: previousTotal,
	}

	insights := []models.Insight{}
	for _, rule := range insightRules {
		insights = append(insights, rule(snap)...)
	}
	return insights, nil
}

func startTrackingInsight() models.Insight {
	return models.Insight{
		Type:            models.InsightRecommendation,
		Severity:        models.SeverityInfo,
		Title:           "Start Tracking",
		Message:         "Add your first transaction to start tracking your carbon footprint!",
		Actionable:      true,
		SuggestedAction: suggest("Add a transaction"),
	}
}

func dominantCategoryRule(snap insightSnapshot) []models.Insight {
	top := topCategory(snap.categories)
	if top == nil {
		return nil
	}
	pct := share(top.sum, snap.total)
	if !pct.GreaterThan(dominantCategoryThreshold) {
		return nil
	}
	return []models.Insight{{
		Type:     models.InsightAlert,
		Severity: models.SeverityWarning,
		Title:    "High CO₂ Category",
		Message: fmt.Sprintf("%s represents %.0f%% of your carbon footprint this period.",
			emission.DisplayNameOf(top.key), roundDecimal(pct, 0)),
		Actionable:      true,
		SuggestedAction: suggest("Consider eco-friendly alternatives in this category"),
	}}
}

func evolutionRule(snap insightSnapshot) []models.Insight {
	if snap.previousTotal <= 0 {
		return nil
	}
	delta := change(snap.total, snap.previousTotal)
	switch {
	case delta.LessThan(evolutionThreshold.Neg()):
		return []models.Insight{{
			Type:     models.InsightTrend,
			Severity: models.SeveritySuccess,
			Title:    "Great Progress!",
			Message: fmt.Sprintf("Your CO₂ emissions decreased by %.1f%% compared to the previous period. Keep it up!",
				math.Abs(roundDecimal(delta, 1))),
		}}
	case delta.GreaterThan(evolutionThreshold):
		return []models.Insight{{
			Type:     models.InsightTrend,
			Severity: models.SeverityWarning,
			Title:    "Emissions Increased",
			Message: fmt.Sprintf("Your CO₂ emissions increased by %.1f%% compared to the previous period.",
				roundDecimal(delta, 1)),
			Actionable:      true,
			SuggestedAction: suggest("Review your recent transactions to identify high-emission activities"),
		}}
	}
	return nil
}

// concentratedMerchantRule emits one insight per merchant above the share
// threshold, largest share first.
func concentratedMerchantRule(snap insightSnapshot) []models.Insight {
	merchants := make([]*bucket[string], len(snap.merchants))
	copy(merchants, snap.merchants)
	sort.SliceStable(merchants, func(i, j int) bool {
		if merchants[i].sum != merchants[j].sum {
			return merchants[i].sum > merchants[j].sum
		}
		return merchants[i].key < merchants[j].key
	})

	var insights []models.Insight
	for _, m := range merchants {
		pct := share(m.sum, snap.total)
		if !pct.GreaterThan(merchantShareThreshold) {
			continue
		}
		insights = append(insights, models.Insight{
			Type:            models.InsightRecommendation,
			Severity:        models.SeverityInfo,
			Title:           "Top Emitter",
			Message:         fmt.Sprintf("'%s' accounts for %.0f%% of your emissions.", m.key, roundDecimal(pct, 0)),
			Actionable:      true,
			SuggestedAction: suggest("Look for greener alternatives or reduce frequency"),
		})
	}
	return insights
}

// footprintByMerchant groups transactions with a non-blank merchant and a
// footprint.
func footprintByMerchant(txs []models.Transaction) *groups[string] {
	g := newGroups[string]()
	for _, t := range txs {
		name := t.MerchantName()
		if strings.TrimSpace(name) == "" || t.CarbonFootprint == nil {
			continue
		}
		g.add(name, *t.CarbonFootprint)
	}
	return g
}

func suggest(action string) *string {
	return &action
}
