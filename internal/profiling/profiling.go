package profiling

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU timings keyed by "subsystem.Operation".

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that adds the elapsed time to name.
// Usage: defer profiling.Track("grid.Update")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return maps.Clone(frameTotals)
}

// SumWithPrefix adds up every total whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for name, d := range frameTotals {
		if strings.HasPrefix(name, prefix) {
			sum += d
		}
	}
	return sum
}

type entry struct {
	name string
	dur  time.Duration
}

// TopN formats the n largest totals, slowest first.
// Example: "frame.Render:4.2ms, grid.Update:0.3ms"
func TopN(n int) string {
	snap := Snapshot()
	list := make([]entry, 0, len(snap))
	for name, d := range snap {
		list = append(list, entry{name, d})
	}
	slices.SortFunc(list, func(a, b entry) int {
		if c := cmp.Compare(b.dur, a.dur); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	n = min(n, len(list))

	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		parts = append(parts, e.name+":"+formatMs(e.dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs renders d in milliseconds with at most one decimal.
func formatMs(d time.Duration) string {
	tenths := d.Microseconds() / 100
	s := strconv.FormatInt(tenths/10, 10)
	if frac := tenths % 10; frac != 0 {
		s += "." + strconv.FormatInt(frac, 10)
	}
	return s + "ms"
}
