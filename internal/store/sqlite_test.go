package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(name string, pain string) model.CompanyRecord {
	return model.CompanyRecord{
		ID:           name + "-id",
		Name:         name,
		Website:      "https://" + name + ".com",
		Category:     model.CategoryHR,
		ContactEmail: "info@" + name + ".com",
		PainPoints:   pain,
		SourceURL:    "https://hr-directory.com/list",
		State:        model.StateFinalized,
		Status:       model.StatusFor(pain),
		Review:       model.ReviewRefined,
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []string{"https://hr-directory.com/list"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://hr-directory.com/list"}, got.Sources)
	assert.Nil(t, got.Summary)
	assert.Nil(t, got.CompletedAt)

	summary := model.Summary{
		Total:       2,
		Successful:  1,
		PerCategory: map[model.Category]int{model.CategoryHR: 2},
		PerStatus:   map[model.RecordStatus]int{model.RecordStatusSuccessful: 1, model.RecordStatusFailed: 1},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunStatusComplete, summary))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, summary, *got.Summary)
	assert.NotNil(t, got.CompletedAt)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	err := s.CompleteRun(context.Background(), "missing", model.RunStatusComplete, model.Summary{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Records(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)

	first := sampleRecord("acme", "scaling support staff")
	second := sampleRecord("beacon", "Analysis failed (HR): timeout")
	second.StatusDetail = "analysis"
	require.NoError(t, s.SaveRecord(ctx, run.ID, first))
	require.NoError(t, s.SaveRecord(ctx, run.ID, second))

	recs, err := s.ListRecords(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, first, recs[0])
	assert.Equal(t, second, recs[1])
	assert.Equal(t, model.RecordStatusFailed, recs[1].Status)

	none, err := s.ListRecords(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_SaveRecord_UnknownRun(t *testing.T) {
	s := newTestSQLite(t)
	err := s.SaveRecord(context.Background(), "missing", sampleRecord("acme", "x"))
	assert.Error(t, err)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, model.RunStatusCanceled, model.Summary{}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)

	canceled, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusCanceled})
	require.NoError(t, err)
	require.Len(t, canceled, 1)
	assert.Equal(t, a.ID, canceled[0].ID)

	page, err := s.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, a.ID, page[0].ID)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	st, err = Open(ctx, config.StoreConfig{Driver: "sqlite", DatabaseURL: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, config.StoreConfig{Driver: "mysql"})
	assert.Error(t, err)
}
