// Package player replays keyboard scenarios on a set of editors, the way a
// user would type them, and merges the editors in between.
package player

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/peer/impl"
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Player plays a scenario on its editors.
type Player struct {
	scenario Scenario
	delay    time.Duration
	editors  []peer.Editor
	log      zerolog.Logger
}

// NewPlayer creates the editors of the scenario with the factory. Editor i
// gets id i; the other fields of conf are shared.
func NewPlayer(scenario Scenario, factory peer.Factory, conf peer.Configuration) (*Player, error) {
	err := scenario.Validate()
	if err != nil {
		return nil, xerrors.Errorf("failed to create player: %w", err)
	}
	delay, err := scenario.Delay()
	if err != nil {
		return nil, xerrors.Errorf("failed to create player: %w", err)
	}

	editors := make([]peer.Editor, scenario.Editors)
	for i := range editors {
		editorConf := conf
		editorConf.EditorID = int32(i)
		editors[i] = factory(editorConf)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if conf.LogOutput != nil {
		out = conf.LogOutput
	}
	logger := zerolog.New(out).With().
		Timestamp().
		Str("run", xid.New().String()).
		Logger().
		Level(conf.LogLevel)

	return &Player{
		scenario: scenario,
		delay:    delay,
		editors:  editors,
		log:      logger,
	}, nil
}

// Editors returns the editors of the player, in id order.
func (p *Player) Editors() []peer.Editor {
	editors := make([]peer.Editor, len(p.editors))
	copy(editors, p.editors)
	return editors
}

// Play runs every step of the scenario. It stops early if ctx is done.
func (p *Player) Play(ctx context.Context) error {
	p.log.Info().Msgf("playing %d steps on %d editors", len(p.scenario.Steps), len(p.editors))

	for i, step := range p.scenario.Steps {
		err := p.playStep(ctx, step)
		if err != nil {
			return xerrors.Errorf("step #%d (%s): %w", i, step.action(), err)
		}
	}

	p.log.Info().Msg("scenario done")
	return nil
}

func (p *Player) playStep(ctx context.Context, step Step) error {
	switch step.action() {
	case TypeAction:
		return p.playKeyboardSequence(ctx, p.editors[step.Editor], step.Keys)
	case BroadcastAction:
		err := p.wait(ctx)
		if err != nil {
			return err
		}
		impl.BroadcastContents(p.editors)
		p.log.Debug().Msg("broadcast contents")
	case SendAction:
		err := p.wait(ctx)
		if err != nil {
			return err
		}
		p.editors[step.Editor].SendEventsTo(p.editors[step.To])
		p.log.Debug().Msgf("sent events of %d to %d", step.Editor, step.To)
	case ClearAction:
		impl.ClearContents(p.editors)
		p.log.Debug().Msg("cleared contents")
	default:
		return xerrors.Errorf("unknown action %q", step.Action)
	}
	return nil
}

func (p *Player) playKeyboardSequence(ctx context.Context, editor peer.Editor, sequence string) error {
	for _, key := range sequence {
		err := p.wait(ctx)
		if err != nil {
			return err
		}
		PressKey(editor, key)
	}
	p.log.Debug().Msgf("editor %d typed %q", editor.ID(), sequence)
	return nil
}

func (p *Player) wait(ctx context.Context) error {
	if p.delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PressKey applies one key of a keyboard sequence to an editor.
func PressKey(editor peer.Editor, key rune) {
	switch key {
	case RightArrow:
		editor.MoveCursorRight()
	case LeftArrow:
		editor.MoveCursorLeft()
	default:
		editor.InsertCharacter(key)
	}
}
