// Package tictactoe is a small reference implementation of game.State,
// used by the integration tests and the self-play demo. The search core
// never imports it.
package tictactoe

import (
	"strings"

	"golang.org/x/exp/rand"

	"mcts/game"
)

const (
	X game.Player = "X"
	O game.Player = "O"
)

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Board is a 3x3 position. The zero-ish value from New has X to move;
// moves are cell indices 0..8 in row-major order. Board is a value type:
// Play copies.
type Board struct {
	cells [9]game.Player
	turn  game.Player
}

func New() Board {
	return Board{turn: X}
}

func (b Board) Player() game.Player {
	return b.turn
}

func (b Board) Players() []game.Player {
	return []game.Player{X, O}
}

func (b Board) LegalMoves() []game.Move {
	if b.Winner() != "" {
		return nil
	}
	moves := make([]game.Move, 0, 9)
	for i, cell := range b.cells {
		if cell == "" {
			moves = append(moves, i)
		}
	}
	return moves
}

func (b Board) Play(move game.Move) game.State {
	i := move.(int)
	if b.cells[i] != "" {
		panic("cell already taken")
	}
	b.cells[i] = b.turn
	if b.turn == X {
		b.turn = O
	} else {
		b.turn = X
	}
	return b
}

func (b Board) Winner() game.Player {
	for _, line := range lines {
		first := b.cells[line[0]]
		if first != "" && first == b.cells[line[1]] && first == b.cells[line[2]] {
			return first
		}
	}
	for _, cell := range b.cells {
		if cell == "" {
			return ""
		}
	}
	return game.Draw
}

// HeuristicMove completes a winning line for the mover when one exists,
// otherwise plays a uniformly random legal move.
func (b Board) HeuristicMove() game.Move {
	moves := b.LegalMoves()
	for _, move := range moves {
		if b.Play(move).Winner() == b.turn {
			return move
		}
	}
	return moves[rand.Intn(len(moves))]
}

func (b Board) String() string {
	var sb strings.Builder
	for i, cell := range b.cells {
		if cell == "" {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(cell))
		}
		if i%3 == 2 && i != 8 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
