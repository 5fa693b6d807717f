package searcher

import (
	"golang.org/x/exp/rand"

	"mcts/game"
)

// RolloutPolicy picks the next move during a simulated playout. The state
// passed in is never terminal.
type RolloutPolicy func(state game.State) game.Move

// HeuristicRollout delegates move choice to the game's own suggestion,
// which may be informed rather than uniform.
func HeuristicRollout() RolloutPolicy {
	return func(state game.State) game.Move {
		return state.HeuristicMove()
	}
}

// UniformRandomRollout picks uniformly among the legal moves. Pass a seeded
// rng for reproducible playouts; a nil rng uses the package-global locked
// source, which is safe to share across parallel search trees.
func UniformRandomRollout(rng *rand.Rand) RolloutPolicy {
	return func(state game.State) game.Move {
		moves := state.LegalMoves()
		if rng != nil {
			return moves[rng.Intn(len(moves))]
		}
		return moves[rand.Intn(len(moves))]
	}
}
