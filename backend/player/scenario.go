package player

import (
	"time"

	"github.com/pelletier/go-toml"
	"golang.org/x/xerrors"
)

// Action is what a step of a scenario does.
type Action string

const (
	// TypeAction plays keys on one editor.
	TypeAction = "type"
	// BroadcastAction sends the events of every editor to every other one.
	BroadcastAction = "broadcast"
	// SendAction sends the events of one editor to another.
	SendAction = "send"
	// ClearAction clears every editor.
	ClearAction = "clear"
)

// Keys with a special meaning in a keyboard sequence. Any other rune,
// backspace included, is inserted.
const (
	RightArrow = '→'
	LeftArrow  = '←'
)

// Step of a scenario.
type Step struct {
	Action string `toml:"action"`
	Editor int    `toml:"editor"`
	Keys   string `toml:"keys"`
	To     int    `toml:"to"`
}

// Scenario is a list of steps played on a fixed set of editors.
type Scenario struct {
	Editors   int    `toml:"editors"`
	StepDelay string `toml:"step_delay"`
	Steps     []Step `toml:"steps"`
}

// LoadScenario reads a scenario from a TOML file, e.g.
//
//	editors = 2
//	step_delay = "250ms"
//
//	[[steps]]
//	editor = 0
//	keys = "hello"
//
//	[[steps]]
//	action = "broadcast"
func LoadScenario(file string) (Scenario, error) {
	tree, err := toml.LoadFile(file)
	if err != nil {
		return Scenario{}, xerrors.Errorf("failed to load scenario %s: %w", file, err)
	}

	var scenario Scenario
	err = tree.Unmarshal(&scenario)
	if err != nil {
		return Scenario{}, xerrors.Errorf("failed to decode scenario %s: %w", file, err)
	}

	err = scenario.Validate()
	if err != nil {
		return Scenario{}, xerrors.Errorf("invalid scenario %s: %w", file, err)
	}
	return scenario, nil
}

// DefaultScenario is the demo of three editors typing concurrently.
func DefaultScenario() Scenario {
	return Scenario{
		Editors: 3,
		Steps: []Step{
			{Action: TypeAction, Editor: 0, Keys: "Rust"},
			{Action: BroadcastAction},

			{Action: TypeAction, Editor: 1, Keys: "→→→→ wasm"},
			{Action: TypeAction, Editor: 2, Keys: "→→→→ Js"},
			{Action: BroadcastAction},

			{Action: TypeAction, Editor: 0, Keys: "→→\bW"},
			{Action: TypeAction, Editor: 1, Keys: "→→→\bS"},
			{Action: TypeAction, Editor: 2, Keys: "←←\b\n"},
			{Action: BroadcastAction},
		},
	}
}

// Delay returns the pause between two keys.
func (s Scenario) Delay() (time.Duration, error) {
	if s.StepDelay == "" {
		return 0, nil
	}
	delay, err := time.ParseDuration(s.StepDelay)
	if err != nil {
		return 0, xerrors.Errorf("bad step delay: %w", err)
	}
	if delay < 0 {
		return 0, xerrors.Errorf("negative step delay %s", delay)
	}
	return delay, nil
}

// Validate checks that every step refers to existing editors.
func (s Scenario) Validate() error {
	if s.Editors < 1 {
		return xerrors.Errorf("a scenario needs at least one editor, got %d", s.Editors)
	}
	_, err := s.Delay()
	if err != nil {
		return err
	}

	for i, step := range s.Steps {
		err := step.validate(s.Editors)
		if err != nil {
			return xerrors.Errorf("step #%d: %w", i, err)
		}
	}
	return nil
}

// action returns the action of the step; a step with keys and no action
// types them.
func (st Step) action() Action {
	if st.Action == "" && st.Keys != "" {
		return TypeAction
	}
	return Action(st.Action)
}

func (st Step) validate(editors int) error {
	switch st.action() {
	case TypeAction:
		if st.Editor < 0 || st.Editor >= editors {
			return xerrors.Errorf("unknown editor %d", st.Editor)
		}
	case SendAction:
		if st.Editor < 0 || st.Editor >= editors {
			return xerrors.Errorf("unknown sender %d", st.Editor)
		}
		if st.To < 0 || st.To >= editors {
			return xerrors.Errorf("unknown recipient %d", st.To)
		}
		if st.To == st.Editor {
			return xerrors.Errorf("editor %d sends to itself", st.Editor)
		}
	case BroadcastAction, ClearAction:
	default:
		return xerrors.Errorf("unknown action %q", st.Action)
	}
	return nil
}
