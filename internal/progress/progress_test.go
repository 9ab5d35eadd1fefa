package progress

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDefaults(t *testing.T) {
	tr := NewTracker()

	snap := tr.Snapshot(42)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.CompletedCount())
	assert.NotNil(t, snap.Completed)
}

func TestRecordCompletionIdempotent(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.RecordCompletion(1, "lesson-a"))
	assert.False(t, tr.RecordCompletion(1, "lesson-a"))
	assert.False(t, tr.RecordCompletion(1, "lesson-a"))

	snap := tr.Snapshot(1)
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 1, snap.CompletedCount())
	assert.True(t, snap.IsCompleted("lesson-a"))
}

func TestLevelInvariant(t *testing.T) {
	tr := NewTracker()

	for n := 1; n <= 7; n++ {
		tr.RecordCompletion(1, fmt.Sprintf("lesson-%d", n))
		snap := tr.Snapshot(1)
		require.Equal(t, 1+n/2, snap.Level, "after %d completions", n)
		require.Equal(t, n*10, snap.Score)
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.RecordCompletion(7, "lesson-a")
	tr.RecordCompletion(7, "lesson-b")
	require.Equal(t, 1, tr.Users())

	tr.Reset(7)
	assert.Equal(t, 0, tr.Users())

	snap := tr.Snapshot(7)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.CompletedCount())

	// Resetting an absent user is a no-op.
	tr.Reset(7)
}

func TestSnapshotIsolation(t *testing.T) {
	tr := NewTracker()
	tr.RecordCompletion(1, "lesson-a")

	snap := tr.Snapshot(1)
	snap.Completed["injected"] = struct{}{}

	assert.Equal(t, 1, tr.Snapshot(1).CompletedCount())
}
