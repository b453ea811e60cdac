package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nemopss/carbon-tracker/backend/emission"
	"github.com/nemopss/carbon-tracker/backend/models"
)

// Summary reports totals, the top category and the evolution against the
// preceding window of equal length. The default window is the trailing 365
// days.
func (s *Service) Summary(ctx context.Context, userID int, q Query) (models.AnalyticsSummary, error) {
	w := s.window(q, summaryDefault)
	prev := w.Previous()

	var (
		txs           []models.Transaction
		previousTotal float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.source.FetchRange(gctx, userID, w.Start, w.End)
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		previousTotal, err = s.source.SumFootprintRange(gctx, userID, prev.Start, prev.End)
		if err != nil {
			return fmt.Errorf("sum previous period: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.AnalyticsSummary{}, err
	}

	total := totalFootprint(txs)
	var average float64
	if len(txs) > 0 {
		average = total / float64(len(txs))
	}

	summary := models.AnalyticsSummary{
		TotalCO2:                 round(total, 2),
		AverageCO2PerTransaction: round(average, 2),
		TransactionCount:         len(txs),
		EvolutionPercentage:      roundDecimal(change(total, previousTotal), 1),
		PeriodStart:              w.StartDate(),
		PeriodEnd:                w.EndDate(),
	}

	if top := topCategory(footprintByCategory(txs).buckets()); top != nil {
		summary.TopCategory = &models.TopCategory{
			Name:        string(top.key),
			DisplayName: emission.DisplayNameOf(top.key),
			CO2:         round(top.sum, 2),
			Percentage:  roundDecimal(share(top.sum, total), 1),
		}
	}

	s.log.Debug().
		Int("user_id", userID).
		Int("transactions", len(txs)).
		Float64("previous_total", previousTotal).
		Msg("summary computed")

	return summary, nil
}
