package searcher

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"mcts/game"
)

// config holds the per-search-run settings shared by every node of one
// tree. It is fixed when the root is built and inherited unchanged by every
// expanded child, so a run cannot mix rollout policies mid-search.
type config struct {
	policy          RolloutPolicy
	maxRolloutDepth int
	stats           collector
}

// Node is one position in the search tree. It owns its children; parent is
// a non-owning back-reference used for backpropagation and for the
// parent-visit term of UCB.
type Node struct {
	cfg      *config
	state    game.State
	parent   *Node
	action   game.Move // the move the parent's player made to reach here, nil at the root
	children []*Node
	untried  []game.Move
	wins     map[game.Player]int
	visits   int
}

// NewRoot wraps the current position in a fresh search tree. A nil policy
// means heuristic rollouts, matching the original engine's default.
func NewRoot(state game.State, policy RolloutPolicy) *Node {
	if policy == nil {
		policy = HeuristicRollout()
	}
	return newNode(state, nil, nil, &config{
		policy:          policy,
		maxRolloutDepth: DefaultRolloutDepthLimit,
		stats:           noopCollector{},
	})
}

func newNode(state game.State, parent *Node, action game.Move, cfg *config) *Node {
	moves := state.LegalMoves()
	untried := make([]game.Move, len(moves))
	copy(untried, moves)

	players := state.Players()
	wins := make(map[game.Player]int, len(players)+1)
	for _, p := range players {
		wins[p] = 0
	}
	wins[game.Draw] = 0

	return &Node{
		cfg:     cfg,
		state:   state,
		parent:  parent,
		action:  action,
		untried: untried,
		wins:    wins,
	}
}

// Select descends the tree policy from this node: terminal nodes are
// returned as-is, expandable nodes are expanded and the new child returned,
// fully expanded nodes hand over to their max-UCB child. It never returns a
// fully-expanded non-terminal node.
func (n *Node) Select(c float64) (*Node, error) {
	node := n
	for !node.IsTerminal() {
		if !node.IsFullyExpanded() {
			return node.Expand()
		}
		node = node.maxUCBChild(c)
	}
	return node, nil
}

// Expand materializes one untried move as a new child. Moves are consumed
// from the tail of the untried list, so enumeration order determines
// expansion order.
func (n *Node) Expand() (*Node, error) {
	if len(n.untried) == 0 {
		return nil, fmt.Errorf("%w: node with %d children", ErrExhaustedExpansion, len(n.children))
	}

	last := len(n.untried) - 1
	action := n.untried[last]
	n.untried = n.untried[:last]

	child := newNode(n.state.Play(action), n, action, n.cfg)
	n.children = append(n.children, child)

	log.Debug().
		Interface("action", action).
		Int("children", len(n.children)).
		Int("untried", len(n.untried)).
		Msg("expanded child")
	return child, nil
}

// Rollout plays the configured policy from this node's position to a
// terminal state and returns the winner (possibly game.Draw). The tree is
// not touched; on an already-terminal node this just reads the outcome.
func (n *Node) Rollout() (game.Player, error) {
	state := n.state
	for depth := 0; depth <= n.cfg.maxRolloutDepth; depth++ {
		if winner := state.Winner(); winner != "" {
			n.cfg.stats.addPlayout(depth)
			log.Debug().Str("winner", string(winner)).Int("depth", depth).Msg("rollout finished")
			return winner, nil
		}
		state = state.Play(n.cfg.policy(state))
	}
	return "", fmt.Errorf("%w: no outcome within %d moves", ErrDegenerateRollout, n.cfg.maxRolloutDepth)
}

// Backpropagate credits a simulation outcome to this node and every
// ancestor up to the root: one visit each, and one win tally for the
// outcome's identity. A winner outside the player set established at
// construction fails before any counter moves.
func (n *Node) Backpropagate(winner game.Player) error {
	if _, ok := n.wins[winner]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, winner)
	}
	for node := n; node != nil; node = node.parent {
		node.visits++
		node.wins[winner]++
	}
	return nil
}

// maxUCBChild returns the child with the maximum UCB score. Ties keep the
// first occurrence in expansion order.
func (n *Node) maxUCBChild(c float64) *Node {
	best := n.children[0]
	bestScore := ucb(best, c)
	for _, child := range n.children[1:] {
		if score := ucb(child, c); score > bestScore {
			best = child
			bestScore = score
		}
	}
	return best
}

// ucb scores a child as winRatio + c*sqrt(ln(parentVisits)/childVisits).
// An unvisited child scores +Inf outright; going through the exploration
// term instead would produce NaN at c == 0 and lose the guarantee that
// unvisited children are tried first.
func ucb(child *Node, c float64) float64 {
	ratio := child.WinRatio()
	if math.IsInf(ratio, 1) {
		return ratio
	}
	return ratio + c*math.Sqrt(math.Log(float64(child.parent.visits))/float64(child.visits))
}

// WinRatio is the fraction of simulations through this node won by the
// player who chose the move leading here, i.e. the player to move in the
// parent state. An unvisited node rates +Inf so selection tries it
// immediately. Losses by other players are deliberately not subtracted;
// the ratio only counts the mover's wins. Defined for non-root nodes.
func (n *Node) WinRatio() float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}
	return float64(n.wins[n.parent.state.Player()]) / float64(n.visits)
}

// IsFullyExpanded reports whether every legal move at this position has a
// child node.
func (n *Node) IsFullyExpanded() bool {
	return len(n.untried) == 0
}

// IsTerminal reports whether the position has a decided outcome.
func (n *Node) IsTerminal() bool {
	return n.state.Winner() != ""
}

// State returns the position this node represents.
func (n *Node) State() game.State {
	return n.state
}

// Action returns the move that led to this node, nil at the root.
func (n *Node) Action() game.Move {
	return n.action
}

// Children returns the expanded children in expansion order. The slice is
// owned by the node and must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Visits returns how many backpropagations have passed through this node.
func (n *Node) Visits() int {
	return n.visits
}

// Wins returns how many simulations through this node the given identity
// has won. Identities outside the game's player set report zero.
func (n *Node) Wins(player game.Player) int {
	return n.wins[player]
}
