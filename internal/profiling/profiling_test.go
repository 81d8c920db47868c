package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func record(name string, d time.Duration) {
	mu.Lock()
	frameTotals[name] += d
	mu.Unlock()
}

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	t.Cleanup(ResetFrame)

	Track("grid.Update")()
	Track("grid.Update")()

	snap := Snapshot()
	assert.Contains(t, snap, "grid.Update")
	assert.Len(t, snap, 1)
}

func TestTopNOrdersSlowestFirst(t *testing.T) {
	ResetFrame()
	t.Cleanup(ResetFrame)

	record("grid.Render", 300*time.Microsecond)
	record("frame.Render", 4200*time.Microsecond)
	record("grid.Update", 2*time.Millisecond)

	assert.Equal(t, "frame.Render:4.2ms, grid.Update:2ms", TopN(2))
	assert.Equal(t, "frame.Render:4.2ms, grid.Update:2ms, grid.Render:0.3ms", TopN(10))
}

func TestSumWithPrefix(t *testing.T) {
	ResetFrame()
	t.Cleanup(ResetFrame)

	record("grid.Render", time.Millisecond)
	record("grid.Update", 2*time.Millisecond)
	record("frame.Render", 5*time.Millisecond)

	assert.Equal(t, 3*time.Millisecond, SumWithPrefix("grid."))
	assert.Equal(t, time.Duration(0), SumWithPrefix("gpu."))
}

func TestResetFrame(t *testing.T) {
	record("grid.Render", time.Millisecond)
	ResetFrame()
	assert.Empty(t, Snapshot())
	assert.Equal(t, "", TopN(3))
}
