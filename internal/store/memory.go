package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// MemoryStore keeps the ledger in process memory. It backs dry runs and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]*model.Run
	order   []string
	records map[string][]model.CompanyRecord
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[string]*model.Run),
		records: make(map[string][]model.CompanyRecord),
	}
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateRun(_ context.Context, sources []string) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:        uuid.New().String(),
		Sources:   slices.Clone(sources),
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	m.order = append(m.order, run.ID)

	cp := *run
	return &cp, nil
}

func (m *MemoryStore) CompleteRun(_ context.Context, runID string, status model.RunStatus, summary model.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return eris.Wrapf(ErrNotFound, "memory: run %s", runID)
	}
	now := time.Now().UTC()
	run.Status = status
	run.Summary = &summary
	run.UpdatedAt = now
	run.CompletedAt = &now
	return nil
}

func (m *MemoryStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: get run %s", runID)
	}
	cp := *run
	return &cp, nil
}

func (m *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]model.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []model.Run
	// Newest first, as the SQL stores order by created_at DESC.
	for i := len(m.order) - 1; i >= 0; i-- {
		run := m.runs[m.order[i]]
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		matched = append(matched, *run)
	}

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if limit := listLimit(filter); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryStore) SaveRecord(_ context.Context, runID string, rec model.CompanyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[runID]; !ok {
		return eris.Wrapf(ErrNotFound, "memory: run %s", runID)
	}
	m.records[runID] = append(m.records[runID], rec)
	return nil
}

func (m *MemoryStore) ListRecords(_ context.Context, runID string) ([]model.CompanyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.records[runID]), nil
}
