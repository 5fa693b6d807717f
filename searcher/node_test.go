package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"mcts/game"
)

type mockMove struct {
	id int
}

// mockState is a scriptable game.State: Play returns next when set,
// otherwise a copy of the receiver (a game that never ends). played
// records the move history for assertions.
type mockState struct {
	player    game.Player
	players   []game.Player
	moves     []game.Move
	winner    game.Player
	heuristic game.Move
	next      *mockState
	played    []game.Move

	heuristicCalls *int
}

func (m mockState) Player() game.Player {
	return m.player
}

func (m mockState) Players() []game.Player {
	return m.players
}

func (m mockState) LegalMoves() []game.Move {
	return m.moves
}

func (m mockState) Play(move game.Move) game.State {
	next := m
	if m.next != nil {
		next = *m.next
	}
	next.played = append(m.played, move)
	return next
}

func (m mockState) Winner() game.Player {
	return m.winner
}

func (m mockState) HeuristicMove() game.Move {
	if m.heuristicCalls != nil {
		*m.heuristicCalls++
	}
	return m.heuristic
}

var twoPlayers = []game.Player{"A", "B"}

func TestNewRoot(t *testing.T) {
	state := mockState{
		player:  "A",
		players: twoPlayers,
		moves:   []game.Move{mockMove{id: 0}, mockMove{id: 1}},
	}

	root := NewRoot(state, nil)

	require.Zero(t, root.Visits(), "Fresh root should have no visits")
	require.Empty(t, root.Children(), "Fresh root should have no children")
	require.False(t, root.IsFullyExpanded(), "Root with untried moves should not be fully expanded")
	require.Nil(t, root.Action(), "Root should have no incoming action")
	for _, p := range []game.Player{"A", "B", game.Draw} {
		require.Zero(t, root.Wins(p), "Win count for %q should start at zero", p)
	}
}

func TestExpand(t *testing.T) {
	terminal := &mockState{player: "B", players: twoPlayers, winner: game.Draw}
	state := mockState{
		player:  "A",
		players: twoPlayers,
		moves:   []game.Move{mockMove{id: 0}, mockMove{id: 1}, mockMove{id: 2}},
		next:    terminal,
	}

	t.Run("consuming untried moves in LIFO order", func(t *testing.T) {
		root := NewRoot(state, nil)

		for _, want := range []int{2, 1, 0} {
			child, err := root.Expand()
			require.NoError(t, err)
			require.Equal(t, mockMove{id: want}, child.Action(), "Moves should be expanded from the tail")
			require.Equal(t, root, child.parent, "Child should back-reference its parent")
			require.Zero(t, child.Visits(), "New child should be unvisited")
			require.Equal(t, []game.Move{mockMove{id: want}}, child.State().(mockState).played,
				"Child state should result from playing the expanded move")
		}
		require.Len(t, root.Children(), 3, "Every expanded child should be appended")
		require.True(t, root.IsFullyExpanded(), "Expanding every move should fully expand the node")
	})

	t.Run("failing once every move is expanded", func(t *testing.T) {
		root := NewRoot(state, nil)
		for range state.moves {
			_, err := root.Expand()
			require.NoError(t, err)
		}

		child, err := root.Expand()

		require.Nil(t, child)
		require.ErrorIs(t, err, ErrExhaustedExpansion)
		require.Len(t, root.Children(), len(state.moves), "Failed expansion should not add children")
	})
}

func TestSelect(t *testing.T) {
	t.Run("returning a terminal root unchanged", func(t *testing.T) {
		root := NewRoot(mockState{player: "A", players: twoPlayers, winner: "A"}, nil)

		node, err := root.Select(DefaultExploration)

		require.NoError(t, err)
		require.Equal(t, root, node, "Terminal root should be selected as-is")
	})

	t.Run("expanding an expandable node", func(t *testing.T) {
		terminal := &mockState{player: "B", players: twoPlayers, winner: "B"}
		root := NewRoot(mockState{
			player:  "A",
			players: twoPlayers,
			moves:   []game.Move{mockMove{id: 0}, mockMove{id: 1}},
			next:    terminal,
		}, nil)

		node, err := root.Select(DefaultExploration)

		require.NoError(t, err)
		require.Len(t, root.Children(), 1, "Selection should expand exactly one child")
		require.Equal(t, root.Children()[0], node, "Selection should return the new child")
	})

	t.Run("descending into the best child before expanding", func(t *testing.T) {
		end := &mockState{player: "A", players: twoPlayers, winner: "A"}
		mid := &mockState{
			player:  "B",
			players: twoPlayers,
			moves:   []game.Move{mockMove{id: 9}},
			next:    end,
		}
		root := NewRoot(mockState{
			player:  "A",
			players: twoPlayers,
			moves:   []game.Move{mockMove{id: 0}, mockMove{id: 1}},
			next:    mid,
		}, nil)

		strong, err := root.Expand()
		require.NoError(t, err)
		weak, err := root.Expand()
		require.NoError(t, err)
		require.NoError(t, strong.Backpropagate("A"))
		require.NoError(t, weak.Backpropagate("B"))

		node, err := root.Select(0)

		require.NoError(t, err)
		require.Equal(t, strong, node.parent,
			"Selection should descend into the child with the higher win ratio and expand there")
		require.Zero(t, node.Visits(), "The returned node should be freshly expanded")
	})
}

func TestBackpropagate(t *testing.T) {
	chain := func() (*Node, *Node, *Node) {
		end := &mockState{player: "A", players: twoPlayers, winner: "A"}
		mid := &mockState{player: "B", players: twoPlayers, moves: []game.Move{mockMove{id: 1}}, next: end}
		root := NewRoot(mockState{
			player:  "A",
			players: twoPlayers,
			moves:   []game.Move{mockMove{id: 0}},
			next:    mid,
		}, nil)
		child, err := root.Expand()
		require.NoError(t, err)
		grandchild, err := child.Expand()
		require.NoError(t, err)
		return root, child, grandchild
	}

	t.Run("crediting every ancestor exactly once", func(t *testing.T) {
		root, child, grandchild := chain()

		require.NoError(t, grandchild.Backpropagate("A"))

		for _, node := range []*Node{root, child, grandchild} {
			require.Equal(t, 1, node.Visits(), "Each ancestor should gain one visit")
			require.Equal(t, 1, node.Wins("A"), "Each ancestor should credit the winner once")
			require.Zero(t, node.Wins("B"))
		}

		require.NoError(t, grandchild.Backpropagate(game.Draw))

		for _, node := range []*Node{root, child, grandchild} {
			require.Equal(t, 2, node.Visits())
			require.Equal(t, 1, node.Wins(game.Draw), "Draws should be tallied under the draw identity")
		}
	})

	t.Run("rejecting a winner outside the player set", func(t *testing.T) {
		root, child, grandchild := chain()
		require.NoError(t, grandchild.Backpropagate("A"))

		err := grandchild.Backpropagate("C")

		require.ErrorIs(t, err, ErrUnknownPlayer)
		for _, node := range []*Node{root, child, grandchild} {
			require.Equal(t, 1, node.Visits(), "A rejected winner should not move any counter")
		}
	})
}

func TestWinRatio(t *testing.T) {
	t.Run("rating an unvisited node as +Inf", func(t *testing.T) {
		parent := &Node{state: mockState{player: "A", players: twoPlayers}}
		node := &Node{parent: parent, wins: map[game.Player]int{"A": 0, "B": 0, game.Draw: 0}}

		require.True(t, math.IsInf(node.WinRatio(), 1))
	})

	t.Run("rating from the mover's perspective", func(t *testing.T) {
		parent := &Node{state: mockState{player: "A", players: twoPlayers}}
		node := &Node{
			parent: parent,
			wins:   map[game.Player]int{"A": 3, "B": 1, game.Draw: 1},
			visits: 5,
		}

		require.Equal(t, 0.6, node.WinRatio(),
			"Ratio should count wins for the parent's player, who chose the move")
	})
}

func TestMaxUCBChild(t *testing.T) {
	buildParent := func(visits int) *Node {
		return &Node{state: mockState{player: "A", players: twoPlayers}, visits: visits}
	}

	t.Run("preferring an unvisited child at any exploration constant", func(t *testing.T) {
		parent := buildParent(12)
		visited := &Node{parent: parent, wins: map[game.Player]int{"A": 7}, visits: 10}
		unvisited := &Node{parent: parent, wins: map[game.Player]int{"A": 0}}
		parent.children = []*Node{visited, unvisited}

		for _, c := range []float64{0, 1.41, 100} {
			require.Equal(t, unvisited, parent.maxUCBChild(c),
				"Unvisited child should win at c=%v", c)
		}
	})

	t.Run("breaking ties by first occurrence", func(t *testing.T) {
		parent := buildParent(4)
		first := &Node{parent: parent, wins: map[game.Player]int{"A": 1}, visits: 2}
		second := &Node{parent: parent, wins: map[game.Player]int{"A": 1}, visits: 2}
		parent.children = []*Node{first, second}

		require.Equal(t, first, parent.maxUCBChild(1.41))
	})

	t.Run("exploiting at c=0 and exploring at c=1.41", func(t *testing.T) {
		parent := buildParent(12)
		exploited := &Node{parent: parent, wins: map[game.Player]int{"A": 7}, visits: 10}
		neglected := &Node{parent: parent, wins: map[game.Player]int{"A": 0}, visits: 2}
		parent.children = []*Node{exploited, neglected}

		require.Equal(t, exploited, parent.maxUCBChild(0),
			"Without exploration the better win ratio should win")
		require.Equal(t, neglected, parent.maxUCBChild(1.41),
			"The exploration term should pull selection towards the neglected child")
	})

	t.Run("growing the exploration bonus with parent visits", func(t *testing.T) {
		child := &Node{wins: map[game.Player]int{"A": 0}, visits: 2}

		child.parent = &Node{state: mockState{player: "A"}, visits: 12}
		early := ucb(child, 1.41)
		child.parent = &Node{state: mockState{player: "A"}, visits: 100}
		late := ucb(child, 1.41)

		require.Greater(t, late, early,
			"A child left behind should become more attractive as the parent gathers visits")
	})
}

// One full select/expand/rollout/backpropagate cycle on a fresh root.
func TestSearchCycle(t *testing.T) {
	terminal := &mockState{player: "B", players: twoPlayers, winner: "A"}
	root := NewRoot(mockState{
		player:  "A",
		players: twoPlayers,
		moves:   []game.Move{mockMove{id: 0}, mockMove{id: 1}, mockMove{id: 2}},
		next:    terminal,
	}, nil)

	node, err := root.Select(1.41)
	require.NoError(t, err)
	winner, err := node.Rollout()
	require.NoError(t, err)
	require.NoError(t, node.Backpropagate(winner))

	require.Equal(t, game.Player("A"), winner)
	require.Len(t, root.Children(), 1, "One cycle should expand exactly one child")
	require.Equal(t, 1, root.Visits())
	require.Equal(t, 1, node.Visits())
	require.Equal(t, 1, node.Wins(winner), "Only the rollout winner's tally should move")
	require.Zero(t, node.Wins("B"))
	require.Zero(t, node.Wins(game.Draw))
}
