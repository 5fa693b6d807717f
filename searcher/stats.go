package searcher

import (
	"sync/atomic"
	"time"
)

// Stats summarizes one FindBestMove run.
type Stats struct {
	Iterations      int // simulation cycles completed, across all trees
	FullPlayouts    int // rollouts that reached a terminal state
	MaxRolloutDepth int // longest playout seen, in moves
	Elapsed         time.Duration
}

// collector receives search events. Counters are atomic so parallel trees
// can share one collector.
type collector interface {
	addIteration()
	addPlayout(depth int)
}

type noopCollector struct{}

func (noopCollector) addIteration()  {}
func (noopCollector) addPlayout(int) {}

type searchCollector struct {
	iterations atomic.Int64
	playouts   atomic.Int64
	maxDepth   atomic.Int64
}

func (c *searchCollector) addIteration() {
	c.iterations.Add(1)
}

func (c *searchCollector) addPlayout(depth int) {
	c.playouts.Add(1)
	for {
		cur := c.maxDepth.Load()
		if int64(depth) <= cur || c.maxDepth.CompareAndSwap(cur, int64(depth)) {
			return
		}
	}
}

func (c *searchCollector) snapshot(elapsed time.Duration) Stats {
	return Stats{
		Iterations:      int(c.iterations.Load()),
		FullPlayouts:    int(c.playouts.Load()),
		MaxRolloutDepth: int(c.maxDepth.Load()),
		Elapsed:         elapsed,
	}
}
