// Package game declares the contracts between a concrete game and the
// search core. The searcher only ever sees these interfaces; board layout,
// legal-move generation and win detection all live on the other side.
package game

// Player identifies a participant. The zero value means "no one yet": a
// state whose Winner() is the zero Player is still in progress.
type Player string

// Draw is the reserved identity credited with the outcome when a game ends
// without a winner. Concrete games must not use it as a real player ID.
const Draw Player = "draw"

// Move is an opaque game action. Implementations must be comparable, since
// the searcher aggregates statistics per move.
type Move any

// State is one position of a turn-based perfect-information game. States
// are immutable values: Play returns a successor and leaves the receiver
// untouched, so the searcher can hold onto any state indefinitely.
type State interface {
	// Player returns the participant to move at this position.
	Player() Player

	// Players returns every participant in the game, in a fixed order.
	Players() []Player

	// LegalMoves returns the moves playable at this position. A terminal
	// position has none.
	LegalMoves() []Move

	// Play applies a legal move and returns the resulting position.
	Play(move Move) State

	// Winner returns the zero Player while the game is in progress, the
	// winning participant once someone has won, or Draw on a stalemate.
	Winner() Player

	// HeuristicMove returns a suggested move for rollouts. It may be
	// informed by game knowledge; it need not be uniformly random.
	HeuristicMove() Move
}
