package searcher

import "errors"

// Contract violations between the search core and its collaborators. None
// of these is transient; each one points at a defect upstream.
var (
	// ErrExhaustedExpansion reports an Expand call on a node with no
	// untried moves left. Select never does this; a direct caller must
	// check IsFullyExpanded first.
	ErrExhaustedExpansion = errors.New("searcher: expand on fully expanded node")

	// ErrDegenerateRollout reports a rollout that hit the depth limit
	// without the game ever reporting an outcome.
	ErrDegenerateRollout = errors.New("searcher: rollout did not terminate")

	// ErrUnknownPlayer reports a backpropagated winner that is not part of
	// the player set declared by the game at construction. Silently adding
	// the key instead would skew every win ratio already in the tree.
	ErrUnknownPlayer = errors.New("searcher: winner not in player set")
)
