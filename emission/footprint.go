package emission

import (
	"strings"
	"time"

	"github.com/nemopss/carbon-tracker/backend/models"
)

// Compute returns amount * factor for the category. ok is false when either
// input is missing; that is a partial-data case, not an error.
func Compute(c *models.Category, amount *float64) (footprint float64, ok bool) {
	if c == nil || amount == nil {
		return 0, false
	}
	return *amount * FactorOf(*c), true
}

// Apply enriches a transaction about to be persisted for the first time. It
// sets the creation timestamp, defaults the currency and freezes the
// footprint together with the factor used. Stored transactions are never
// passed through Apply again.
func Apply(t *models.Transaction, now time.Time) {
	t.CreatedAt = now.UTC()

	if strings.TrimSpace(t.Currency) == "" {
		t.Currency = DefaultCurrency
	}

	footprint, ok := Compute(t.Category, t.Amount)
	if !ok {
		return
	}
	factor := FactorOf(*t.Category)
	source := SourceCategoryDefault
	t.EmissionFactor = &factor
	t.CarbonFootprint = &footprint
	t.FactorSource = &source
	if t.ConfidenceScore == nil {
		confidence := 1.0
		t.ConfidenceScore = &confidence
	}
}
