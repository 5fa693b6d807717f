package searcher

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mcts/game"
)

// Search hyperparameters.
const (
	// DefaultExploration is the UCB exploration constant, sqrt(2) as in
	// canonical UCT.
	DefaultExploration = math.Sqrt2

	// DefaultRolloutDepthLimit bounds a single playout. A game that has
	// not ended after this many moves is treated as a defective
	// collaborator rather than simulated forever.
	DefaultRolloutDepthLimit = 100000
)

type Option func(m *MCTS)

// MCTS drives the select/expand/rollout/backpropagate cycle for a fixed
// budget and recommends the move whose root child gathered the most
// visits. Not safe for concurrent use by multiple goroutines; each agent
// gets its own instance.
type MCTS struct {
	iterations   int
	duration     time.Duration
	goroutines   int
	exploration  float64
	policy       RolloutPolicy
	rolloutDepth int
	collectStats bool
	last         Stats
}

// WithIterations sets a fixed simulation budget per search.
func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

// WithDuration sets a wall-clock budget per search, used when no iteration
// budget is set.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithGoroutines enables root parallelization: each goroutine builds an
// independent tree from the searched position and the child statistics are
// merged per move afterwards.
func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithExploration sets the UCB exploration constant.
func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

// WithRolloutPolicy replaces the default heuristic rollouts. The policy is
// fixed for every search this instance runs; mixing policies within a run
// would bias the statistics inconsistently across simulations.
func WithRolloutPolicy(policy RolloutPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithRolloutDepthLimit overrides DefaultRolloutDepthLimit.
func WithRolloutDepthLimit(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.rolloutDepth = depth
		}
	}
}

// WithStats records search counters, readable via Stats after each search.
func WithStats() Option {
	return func(m *MCTS) {
		m.collectStats = true
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:   1,
		exploration:  DefaultExploration,
		policy:       HeuristicRollout(),
		rolloutDepth: DefaultRolloutDepthLimit,
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 && m.duration <= 0 {
		panic("Must specify search iterations or duration")
	}
	return m
}

// FindBestMove spends the configured budget searching from state and
// returns the move with the highest merged visit count.
func (m *MCTS) FindBestMove(state game.State) (game.Move, error) {
	if len(state.LegalMoves()) == 0 {
		return nil, fmt.Errorf("searcher: no legal moves at searched position (winner %q)", state.Winner())
	}

	stats := collector(noopCollector{})
	if m.collectStats {
		stats = &searchCollector{}
	}
	start := time.Now()

	roots, err := m.buildTrees(state, stats)
	if err != nil {
		return nil, err
	}

	if sc, ok := stats.(*searchCollector); ok {
		m.last = sc.snapshot(time.Since(start))
	}

	best, visits := bestByVisits(roots)
	log.Debug().
		Interface("move", best).
		Int("visits", visits).
		Dur("elapsed", time.Since(start)).
		Msg("search complete")
	return best, nil
}

// Stats returns the counters of the most recent search. Zero unless the
// instance was built with WithStats.
func (m *MCTS) Stats() Stats {
	return m.last
}

func (m *MCTS) buildTrees(state game.State, stats collector) ([]*Node, error) {
	cfg := &config{
		policy:          m.policy,
		maxRolloutDepth: m.rolloutDepth,
		stats:           stats,
	}

	if m.goroutines == 1 {
		root := newNode(state, nil, nil, cfg)
		if err := m.search(root, m.iterations, stats); err != nil {
			return nil, err
		}
		return []*Node{root}, nil
	}

	roots := make([]*Node, m.goroutines)
	errs := make([]error, m.goroutines)
	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		share := m.iterations / m.goroutines
		if i < m.iterations%m.goroutines {
			share++
		}
		wg.Add(1)
		go func(i, share int) {
			defer wg.Done()
			root := newNode(state, nil, nil, cfg)
			roots[i] = root
			errs[i] = m.search(root, share, stats)
		}(i, share)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return roots, nil
}

func (m *MCTS) search(root *Node, iterations int, stats collector) error {
	if m.iterations > 0 {
		for i := 0; i < iterations; i++ {
			if err := m.simulate(root, stats); err != nil {
				return err
			}
		}
		return nil
	}

	// At least one simulation per tree, however short the budget, so the
	// root always has a child to recommend.
	deadline := time.Now().Add(m.duration)
	for first := true; first || time.Now().Before(deadline); first = false {
		if err := m.simulate(root, stats); err != nil {
			return err
		}
	}
	return nil
}

func (m *MCTS) simulate(root *Node, stats collector) error {
	node, err := root.Select(m.exploration)
	if err != nil {
		return err
	}
	winner, err := node.Rollout()
	if err != nil {
		return err
	}
	if err := node.Backpropagate(winner); err != nil {
		return err
	}
	stats.addIteration()
	return nil
}

// bestByVisits merges child visit counts per move across the root of every
// tree and returns the argmax. Ties keep the earliest move in expansion
// order, so a single-tree search is deterministic for a fixed seed.
func bestByVisits(roots []*Node) (game.Move, int) {
	visits := make(map[game.Move]int)
	var order []game.Move
	for _, root := range roots {
		for _, child := range root.Children() {
			action := child.Action()
			if _, ok := visits[action]; !ok {
				order = append(order, action)
			}
			visits[action] += child.Visits()
		}
	}

	best := order[0]
	for _, action := range order[1:] {
		if visits[action] > visits[best] {
			best = action
		}
	}
	return best, visits[best]
}
