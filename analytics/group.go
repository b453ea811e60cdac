package analytics

import "github.com/nemopss/carbon-tracker/backend/models"

// bucket is a running footprint sum and count for one group key.
type bucket[K comparable] struct {
	key   K
	sum   float64
	count int
}

// groups accumulates buckets in one pass and remembers first-seen order.
type groups[K comparable] struct {
	index   map[K]*bucket[K]
	ordered []*bucket[K]
}

func newGroups[K comparable]() *groups[K] {
	return &groups[K]{index: make(map[K]*bucket[K])}
}

func (g *groups[K]) add(key K, footprint float64) *bucket[K] {
	b, ok := g.index[key]
	if !ok {
		b = &bucket[K]{key: key}
		g.index[key] = b
		g.ordered = append(g.ordered, b)
	}
	b.sum += footprint
	b.count++
	return b
}

func (g *groups[K]) buckets() []*bucket[K] {
	return g.ordered
}

// totalFootprint sums footprints, counting unset ones as zero.
func totalFootprint(txs []models.Transaction) float64 {
	var total float64
	for _, t := range txs {
		total += t.Footprint()
	}
	return total
}

// topCategory returns the category bucket with the highest sum. Equal sums
// go to the category declared first in models.Categories.
func topCategory(buckets []*bucket[models.Category]) *bucket[models.Category] {
	var top *bucket[models.Category]
	for _, b := range buckets {
		if top == nil || b.sum > top.sum || (b.sum == top.sum && b.key.Rank() < top.key.Rank()) {
			top = b
		}
	}
	return top
}

// footprintByCategory groups transactions that have both a category and a
// footprint.
func footprintByCategory(txs []models.Transaction) *groups[models.Category] {
	g := newGroups[models.Category]()
	for _, t := range txs {
		if t.Category == nil || t.CarbonFootprint == nil {
			continue
		}
		g.add(*t.Category, *t.CarbonFootprint)
	}
	return g
}
