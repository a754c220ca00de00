package pipeline

import (
	"sync"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Aggregator collects finalized records in completion order. It is safe for
// concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	records []model.CompanyRecord
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add appends a finalized record. The aggregator keeps its own copy.
func (a *Aggregator) Add(rec model.CompanyRecord) {
	a.mu.Lock()
	a.records = append(a.records, rec)
	a.mu.Unlock()
}

// All returns a copy of the records in insertion order.
func (a *Aggregator) All() []model.CompanyRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.CompanyRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Successful returns the records passing model.IsSuccessful, in order.
func (a *Aggregator) Successful() []model.CompanyRecord {
	return model.FilterSuccessful(a.All())
}

// Summary counts records per category and status. Success uses the same
// predicate as export filtering.
func (a *Aggregator) Summary() model.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := model.Summary{
		Total:       len(a.records),
		PerCategory: make(map[model.Category]int),
		PerStatus:   make(map[model.RecordStatus]int),
	}
	for _, r := range a.records {
		s.PerCategory[r.Category]++
		s.PerStatus[r.Status]++
		if r.Successful() {
			s.Successful++
		}
	}
	return s
}
