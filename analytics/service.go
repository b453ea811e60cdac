// Package analytics aggregates stored transaction footprints into summaries,
// time series, breakdowns and insights over a date window.
//
// Every call recomputes from the store; nothing is cached and no state is
// shared between requests.
package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// TransactionSource is the read side of the transaction store.
type TransactionSource interface {
	// FetchRange returns the user's transactions created in [start, end],
	// newest first.
	FetchRange(ctx context.Context, userID int, start, end time.Time) ([]models.Transaction, error)
	// SumFootprintRange sums stored footprints created in [start, end).
	// No match yields 0.
	SumFootprintRange(ctx context.Context, userID int, start, end time.Time) (float64, error)
}

// Query carries the raw from/to query parameters (ISO calendar dates).
type Query struct {
	From string
	To   string
}

type Service struct {
	source TransactionSource
	now    func() time.Time
	loc    *time.Location
	log    zerolog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used to interpret calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(source TransactionSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		now:    time.Now,
		loc:    time.UTC,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the zone calendar dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) window(q Query, fallback startFallback) Window {
	w := ResolveWindow(q.From, q.To, s.now().In(s.loc), s.loc, fallback)
	s.log.Debug().
		Str("from", q.From).
		Str("to", q.To).
		Time("start", w.Start).
		Time("end", w.End).
		Msg("analytics window resolved")
	return w
}
