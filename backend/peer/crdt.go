package peer

import (
	"Causal-text/backend/types"
	"io"

	"github.com/rs/zerolog"
)

// Editor is one replica of the text. Each editor owns its event store; the
// only way events travel between editors is a merge.
type Editor interface {
	// ID returns the editor id, used in every moment it generates.
	ID() int32

	// InsertCharacter inserts a character at the cursor. Inserting
	// types.BackspaceCharacter deletes the character before the cursor.
	InsertCharacter(character rune)

	// RemovePreviousCharacter deletes the character before the cursor.
	RemovePreviousCharacter()

	// MoveCursorRight moves the cursor one character to the right, if possible.
	MoveCursorRight()

	// MoveCursorLeft moves the cursor one character to the left, if possible.
	MoveCursorLeft()

	// Clear drops every event and puts the cursor back at the origin. The
	// clock is kept.
	Clear()

	// ReceiveEventsFrom merges all the events known by sender.
	ReceiveEventsFrom(sender Editor)

	// SendEventsTo merges all the events of this editor into recipient.
	SendEventsTo(recipient Editor)

	// Snapshot returns a copy of the events known by the editor.
	Snapshot() types.EventsMessage

	// ReceiveSnapshot merges a snapshot taken from another editor.
	ReceiveSnapshot(msg types.EventsMessage)

	// Timestamp returns the next timestamp the editor will use.
	Timestamp() types.Timestamp

	// Text returns the visible content.
	Text() string

	// CursorPosition returns the number of characters before the cursor.
	CursorPosition() uint

	// CursorMoment returns the moment of the event the cursor is anchored to.
	CursorMoment() types.Moment

	// FlatSequence returns the depth-first walk of the causal tree.
	FlatSequence() []types.Event

	// FinalSequence returns the events that produce the visible content.
	FinalSequence() []types.Event
}

// Model is the host object that gets updated after each change. The editor
// only ever writes into it, after releasing its own lock, so the setters may
// read the editor back.
type Model interface {
	SetContent(content string)
	SetCursorPosition(position uint)
	SetCursorMoment(moment types.Moment)
	SetFlatSequence(events []types.Event)
	SetFinalSequence(events []types.Event)
}

// InfoPanel is a host area where an editor displays its status.
type InfoPanel interface {
	SetInfos(infos string)
}

// InfoBoard gives access to the info panels of the host by name.
type InfoBoard interface {
	Panel(name string) (InfoPanel, bool)
}

// Configuration of an editor.
type Configuration struct {
	// EditorID must be distinct among the editors that exchange events.
	EditorID int32

	// Model is updated after every change. Can be nil.
	Model Model

	// Board holds the info panels. Can be nil.
	Board InfoBoard

	// LogOutput defaults to a console writer on stdout.
	LogOutput io.Writer

	LogLevel zerolog.Level
}

// Factory creates an editor from a configuration.
type Factory func(conf Configuration) Editor
