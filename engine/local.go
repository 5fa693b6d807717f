// Package engine runs complete games between move-recommending agents.
package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"mcts/game"
)

// Agent recommends a move for the player to act at the given position.
// *searcher.MCTS satisfies it.
type Agent interface {
	FindBestMove(state game.State) (game.Move, error)
}

// MaxTurns caps a match so a defective game or agent cannot loop forever.
const MaxTurns = 500

// Local plays out one game on a single machine, asking each player's agent
// in turn.
type Local struct {
	state  game.State
	agents map[game.Player]Agent
}

func NewLocal(state game.State, agents map[game.Player]Agent) *Local {
	if len(agents) < 2 {
		panic("need at least two agents")
	}
	for _, player := range state.Players() {
		if _, ok := agents[player]; !ok {
			panic(fmt.Sprintf("no agent for player %q", player))
		}
	}
	return &Local{state: state, agents: agents}
}

// Run executes the game loop until a winner or draw and returns the
// outcome with the number of moves played.
func (e *Local) Run() (game.Player, int, error) {
	state := e.state
	log.Info().Str("player", string(state.Player())).Msg("match starting")

	turns := 0
	for state.Winner() == "" {
		if turns >= MaxTurns {
			return "", turns, fmt.Errorf("engine: no outcome after %d moves", MaxTurns)
		}

		player := state.Player()
		move, err := e.agents[player].FindBestMove(state)
		if err != nil {
			return "", turns, fmt.Errorf("engine: agent for %q: %w", player, err)
		}

		state = state.Play(move)
		turns++
		log.Info().
			Int("turn", turns).
			Str("player", string(player)).
			Interface("move", move).
			Msg("move played")
	}

	winner := state.Winner()
	log.Info().Str("winner", string(winner)).Int("turns", turns).Msg("match over")
	return winner, turns, nil
}
