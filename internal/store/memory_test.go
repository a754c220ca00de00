package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Migrate(ctx))

	sources := []string{"https://a.com"}
	run, err := m.CreateRun(ctx, sources)
	require.NoError(t, err)
	sources[0] = "mutated"

	got, err := m.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com"}, got.Sources)

	rec := sampleRecord("acme", "slow hiring")
	require.NoError(t, m.SaveRecord(ctx, run.ID, rec))
	assert.ErrorIs(t, m.SaveRecord(ctx, "missing", rec), ErrNotFound)

	recs, err := m.ListRecords(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.CompanyRecord{rec}, recs)

	require.NoError(t, m.CompleteRun(ctx, run.ID, model.RunStatusComplete, model.Summary{Total: 1, Successful: 1}))
	got, err = m.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 1, got.Summary.Successful)
	assert.NotNil(t, got.CompletedAt)

	_, err = m.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.CompleteRun(ctx, "missing", model.RunStatusFailed, model.Summary{}), ErrNotFound)
	require.NoError(t, m.Close())
}

func TestMemoryStore_ListRuns(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := m.CreateRun(ctx, nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, m.CompleteRun(ctx, ids[1], model.RunStatusComplete, model.Summary{}))

	all, err := m.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	done, err := m.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, ids[1], done[0].ID)

	page, err := m.ListRuns(ctx, RunFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	empty, err := m.ListRuns(ctx, RunFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
