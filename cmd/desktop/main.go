//go:build ebiten

// Command desktop plays Decodoku in a local window. Click a charged bulk cell
// and then the cell to move its charge onto; Enter or Space advances.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/decodoku/game/config"
	"github.com/wricardo/decodoku/game/decoder/luadecoder"
	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
)

func main() {
	cmd := &cli.Command{
		Name:  "decodoku-desktop",
		Usage: "Play Decodoku in a desktop window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing puzzle presets"},
			&cli.StringFlag{Name: "preset", Usage: "preset name (defaults to classic)"},
			&cli.Int64Flag{Name: "seed", Usage: "fixed seed for reproducible episodes"},
			&cli.StringFlag{Name: "decoder-script", Usage: "Lua decoder used for cluster colors"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	preset := configs.GetDefault()
	if name := cmd.String("preset"); name != "" {
		if preset, err = configs.LoadConfig(name); err != nil {
			return err
		}
	}

	var opts []engine.Option
	if cmd.IsSet("seed") {
		opts = append(opts, engine.WithSeed(cmd.Int64("seed")))
	}
	e, err := engine.NewEngine(preset, opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	var decoder render.Decoder = render.ComponentClusterer{}
	if script := cmd.String("decoder-script"); script != "" {
		if decoder, err = luadecoder.Load(script); err != nil {
			return err
		}
	}

	game := NewGame(e, render.NewAdapter(decoder))
	w, h := game.layout.windowSize()
	ebiten.SetWindowTitle("Decodoku - " + preset.Name)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
