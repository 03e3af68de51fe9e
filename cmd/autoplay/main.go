// Command autoplay plays Decodoku episodes against a running server by
// sweeping every bulk charge onto one boundary, then prints how each
// episode resolved. It is useful as a smoke test for a deployment and as a
// baseline for comparing decoders.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/decodoku/game/engine"
)

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Solve Decodoku episodes through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "server base URL"},
			&cli.StringFlag{Name: "preset", Usage: "preset to create the session with"},
			&cli.StringFlag{Name: "session", Usage: "play an existing session instead of creating one"},
			&cli.Int64Flag{Name: "seed", Usage: "fixed seed for the created session"},
			&cli.Int64Flag{Name: "episodes", Value: 10, Usage: "number of episodes to play"},
			&cli.BoolFlag{Name: "right", Usage: "sweep onto the right boundary instead of the left"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	boundary := 0
	if cmd.Bool("right") {
		boundary = 1
	}
	player := NewPlayer(cmd.String("url"), boundary)

	sessionID := cmd.String("session")
	if sessionID == "" {
		var seed *int64
		if cmd.IsSet("seed") {
			s := cmd.Int64("seed")
			seed = &s
		}
		info, err := player.CreateSession(ctx, cmd.String("preset"), seed)
		if err != nil {
			return err
		}
		sessionID = info.ID
		log.Printf("Created session %s (config=%s)", info.ID, info.ConfigName)
	}

	reports, err := player.Play(ctx, sessionID, int(cmd.Int64("episodes")))
	printReports(os.Stdout, reports)
	return err
}

func printReports(w io.Writer, reports []EpisodeReport) {
	won := 0
	for _, r := range reports {
		mark := "❌"
		if r.Outcome == engine.OutcomeWon {
			mark = "✅"
			won++
		}
		fmt.Fprintf(w, "%s episode %d: %s after %d moves\n", mark, r.Episode, r.Outcome, r.Moves)
	}
	if len(reports) > 0 {
		fmt.Fprintf(w, "Won %d/%d episodes\n", won, len(reports))
	}
}
