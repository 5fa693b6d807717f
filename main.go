package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mcts/engine"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/searcher"
)

func main() {
	iterations := flag.Int("iterations", 2000, "search iterations per move")
	goroutines := flag.Int("goroutines", 1, "parallel search trees per move")
	exploration := flag.Float64("c", searcher.DefaultExploration, "UCB exploration constant")
	uniform := flag.Bool("uniform", false, "uniform-random rollouts instead of heuristic")
	games := flag.Int("games", 1, "number of self-play games")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	outcomes := map[game.Player]int{}
	for i := 0; i < *games; i++ {
		winner, turns, err := runGame(*iterations, *goroutines, *exploration, *uniform)
		if err != nil {
			log.Fatal().Err(err).Msg("self-play failed")
		}
		outcomes[winner]++
		fmt.Printf("game %d: %s in %d moves\n", i+1, describe(winner), turns)
	}
	fmt.Printf("X wins: %d, O wins: %d, draws: %d\n", outcomes[tictactoe.X], outcomes[tictactoe.O], outcomes[game.Draw])
}

func runGame(iterations, goroutines int, exploration float64, uniform bool) (game.Player, int, error) {
	newAgent := func() engine.Agent {
		options := []searcher.Option{
			searcher.WithIterations(iterations),
			searcher.WithGoroutines(goroutines),
			searcher.WithExploration(exploration),
		}
		if uniform {
			options = append(options, searcher.WithRolloutPolicy(searcher.UniformRandomRollout(nil)))
		}
		return searcher.NewMCTS(options...)
	}

	local := engine.NewLocal(tictactoe.New(), map[game.Player]engine.Agent{
		tictactoe.X: newAgent(),
		tictactoe.O: newAgent(),
	})
	return local.Run()
}

func describe(winner game.Player) string {
	if winner == game.Draw {
		return "draw"
	}
	return fmt.Sprintf("%s wins", winner)
}
