package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// CarbonSummary compares the footprint of the current calendar month with the
// month before it.
func (s *Service) CarbonSummary(ctx context.Context, userID int) (models.CarbonSummary, error) {
	now := s.now().In(s.loc)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	nextMonth := thisMonth.AddDate(0, 1, 0)

	var current, previous float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.source.SumFootprintRange(gctx, userID, thisMonth, nextMonth)
		if err != nil {
			return fmt.Errorf("sum current month: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		previous, err = s.source.SumFootprintRange(gctx, userID, lastMonth, thisMonth)
		if err != nil {
			return fmt.Errorf("sum last month: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.CarbonSummary{}, err
	}

	return models.CarbonSummary{
		CurrentMonth: round(current, 2),
		LastMonth:    round(previous, 2),
		Month:        thisMonth.Format("2006-01"),
	}, nil
}
