package impl

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/types"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var logIO = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// NewEditor creates a new editor with an empty content and its cursor at the
// origin.
func NewEditor(conf peer.Configuration) peer.Editor {
	var out io.Writer = logIO
	if conf.LogOutput != nil {
		out = conf.LogOutput
	}
	logger := newLogger(out, conf.LogLevel).With().
		Int32("editor", conf.EditorID).
		Logger()

	content := NewContent()

	e := &editor{
		conf:              conf,
		mu:                sync.Mutex{},
		log:               logger,
		clock:             newLogicalClock(),
		cursor:            originCursor,
		content:           content,
		finalEventsStream: content.FinalEventsStream(),
	}

	e.log.Debug().Msg("editor created")
	return e
}

// Helper functions

func newLogger(io io.Writer, level zerolog.Level) zerolog.Logger {
	logger := zerolog.New(io).With().Timestamp().Logger()
	return logger.Level(level)
}

// Timestamp 0 belongs to the origin.
func newLogicalClock() *LogicalClock {
	return &LogicalClock{
		current: 1,
	}
}

func infosPanelName(editorID int32) string {
	return fmt.Sprintf("editor-infos-%d", editorID)
}

// editor implements a replica of the text
//
// - implements peer.Editor
type editor struct {
	peer.Editor
	conf    peer.Configuration
	mu      sync.Mutex
	log     zerolog.Logger
	clock   *LogicalClock
	cursor  Cursor
	content *Content

	// the final events stream is needed for every cursor move and its
	// computation walks the whole tree, so it is cached. It must be refreshed
	// every time the content changes.
	finalEventsStream []types.Event
}
