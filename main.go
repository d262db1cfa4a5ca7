package main

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/peer/impl"
	"Causal-text/backend/player"
	"Causal-text/backend/types"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/sanity-io/litter"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

var logIO = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

func main() {
	app := &cli.App{
		Name:  "causal-text",
		Usage: "play collaborative editing scenarios on causal tree editors",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every editor operation",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "play a scenario and print the text of every editor",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "scenario",
						Aliases: []string{"s"},
						Usage:   "TOML scenario file, the built-in demo if empty",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "pause between two keys, overrides the scenario",
						Value: -1,
					},
					&cli.StringFlag{
						Name:  "save",
						Usage: "directory where the snapshot of each editor is written",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "dump the flat sequence of each editor",
					},
				},
				Action: play,
			},
			{
				Name:  "inspect",
				Usage: "load a saved snapshot and print its text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "snapshot",
						Required: true,
						Usage:    "snapshot file written by play --save",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "dump the flat sequence",
					},
				},
				Action: inspect,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func configuration(c *cli.Context) peer.Configuration {
	level := zerolog.InfoLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return peer.Configuration{
		LogOutput: logIO,
		LogLevel:  level,
	}
}

func play(c *cli.Context) error {
	scenario := player.DefaultScenario()
	if file := c.String("scenario"); file != "" {
		var err error
		scenario, err = player.LoadScenario(file)
		if err != nil {
			return err
		}
	}
	if delay := c.Duration("delay"); delay >= 0 {
		scenario.StepDelay = delay.String()
	}

	p, err := player.NewPlayer(scenario, impl.NewEditor, configuration(c))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	err = p.Play(ctx)
	if err != nil {
		return xerrors.Errorf("failed to play scenario: %w", err)
	}

	for _, editor := range p.Editors() {
		printEditor(editor)
		if c.Bool("dump") {
			fmt.Println(litter.Sdump(editor.FlatSequence()))
		}
	}

	dir := c.String("save")
	if dir == "" {
		return nil
	}
	return saveSnapshots(dir, p.Editors())
}

func saveSnapshots(dir string, editors []peer.Editor) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return xerrors.Errorf("failed to create %s: %w", dir, err)
	}

	for _, editor := range editors {
		buf, err := editor.Snapshot().Marshal()
		if err != nil {
			return err
		}

		file := filepath.Join(dir, fmt.Sprintf("editor-%d.json", editor.ID()))
		err = os.WriteFile(file, buf, 0644)
		if err != nil {
			return xerrors.Errorf("failed to save snapshot: %w", err)
		}
	}
	return nil
}

func inspect(c *cli.Context) error {
	file := c.String("snapshot")
	buf, err := os.ReadFile(file)
	if err != nil {
		return xerrors.Errorf("failed to read snapshot: %w", err)
	}

	msg, err := types.UnmarshalEventsMessage(buf)
	if err != nil {
		return err
	}

	conf := configuration(c)
	conf.EditorID = msg.EditorID
	editor := impl.NewEditor(conf)
	editor.ReceiveSnapshot(msg)

	printEditor(editor)
	if c.Bool("dump") {
		fmt.Println(litter.Sdump(editor.FlatSequence()))
	}
	return nil
}

func printEditor(editor peer.Editor) {
	fmt.Printf("%c (timestamp %d, cursor %d at %s): %q\n",
		types.EditorLetter(editor.ID()),
		editor.Timestamp(),
		editor.CursorPosition(),
		editor.CursorMoment(),
		editor.Text(),
	)
}
