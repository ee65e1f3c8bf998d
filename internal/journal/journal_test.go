package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestOpenAppliesMigrations(t *testing.T) {
	j := openTest(t)
	v, dirty, err := j.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), v)
}

func TestOpenIsRepeatable(t *testing.T) {
	p := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(p, nil)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	j, err = Open(p, nil)
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestRecordRunRoundTrip(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	run := NewRun("in.csv", "out.csv")
	run.Rows = 5
	run.IDWidth = "int8"
	run.Warnings = []string{"department HR has no salary below 1000000; 1 outlier(s) left uncapped"}
	run.FinishedAt = run.StartedAt.Add(time.Second)
	ops := []cleaner.Operation{
		{Row: 1, Column: "Salary", Original: "-50000", New: "50000", Kind: cleaner.OpAbsolute, Reason: "negative_salary"},
		{Row: 1, Column: "ID", New: "1", Kind: cleaner.OpSerialFill, Reason: "missing_id"},
	}
	require.NoError(t, j.RecordRun(ctx, run, ops))

	got, err := j.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 5, got.Rows)
	assert.Equal(t, 2, got.Operations)
	assert.Equal(t, run.Warnings, got.Warnings)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))

	gotOps, err := j.Operations(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, ops, gotOps)
}

func TestRunsNewestFirstWithLimit(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		r := NewRun("in.csv", "out.csv")
		r.StartedAt = base.Add(time.Duration(i) * time.Hour)
		r.FinishedAt = r.StartedAt
		require.NoError(t, j.RecordRun(ctx, r, nil))
		ids = append(ids, r.ID)
	}
	runs, err := j.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	all, err := j.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunNotFound(t *testing.T) {
	j := openTest(t)
	_, err := j.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
