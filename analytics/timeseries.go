package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// GroupByDay is the only supported time-series granularity.
const GroupByDay = "day"

// TimeSeries returns per-day footprint sums in ascending date order. Days
// are calendar dates of the creation time in the service's location.
func (s *Service) TimeSeries(ctx context.Context, userID int, q Query, groupBy string) ([]models.TimeSeriesPoint, error) {
	if groupBy != "" && groupBy != GroupByDay {
		s.log.Debug().Str("group_by", groupBy).Msg("unsupported grouping, using day")
	}

	w := s.window(q, periodDefault)
	txs, err := s.source.FetchRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	days := newGroups[string]()
	for _, t := range txs {
		days.add(t.CreatedAt.In(s.loc).Format(isoDate), t.Footprint())
	}

	points := make([]models.TimeSeriesPoint, 0, len(days.buckets()))
	for _, b := range days.buckets() {
		points = append(points, models.TimeSeriesPoint{
			Date:             b.key,
			CO2Value:         round(b.sum, 2),
			TransactionCount: b.count,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}
