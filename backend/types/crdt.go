package types

import (
	"encoding/json"
	"fmt"

	"golang.org/x/xerrors"
)

// -----------------------------------------------------------------------------
// Moment

// Compare orders moments by decreasing timestamp, then by increasing editor
// id. It returns -1, 0 or 1.
func (m Moment) Compare(other Moment) int {
	if m.Timestamp == other.Timestamp {
		switch {
		case m.EditorID < other.EditorID:
			return -1
		case m.EditorID > other.EditorID:
			return 1
		default:
			return 0
		}
	}
	// Reverse time order
	if m.Timestamp > other.Timestamp {
		return -1
	}
	return 1
}

// Less reports whether m comes before other.
func (m Moment) Less(other Moment) bool {
	return m.Compare(other) < 0
}

// String implements fmt.Stringer, e.g. "r3".
func (m Moment) String() string {
	return fmt.Sprintf("%c%d", EditorLetter(m.EditorID), m.Timestamp)
}

// -----------------------------------------------------------------------------
// EventKey

// Compare orders keys by decreasing priority, then by moment.
func (k EventKey) Compare(other EventKey) int {
	if k.Priority == other.Priority {
		return k.Moment.Compare(other.Moment)
	}
	// Reverse priority order
	if k.Priority > other.Priority {
		return -1
	}
	return 1
}

// Less reports whether k comes before other.
func (k EventKey) Less(other EventKey) bool {
	return k.Compare(other) < 0
}

// Equal compares the moments only: the priority is derived from the
// character and does not take part in identity.
func (k EventKey) Equal(other EventKey) bool {
	return k.Moment == other.Moment
}

// IsOrigin tells if the key designates the root of the causal tree.
func (k EventKey) IsOrigin() bool {
	return k.Equal(OriginKey)
}

func (k EventKey) String() string {
	return fmt.Sprintf("%s/p%d", k.Moment, k.Priority)
}

// -----------------------------------------------------------------------------
// Event

// Compare delegates to the event keys.
func (e Event) Compare(other Event) int {
	return e.Key.Compare(other.Key)
}

// IsBackspace tells if the event deletes the character before it.
func (e Event) IsBackspace() bool {
	return e.Character == BackspaceCharacter
}

func (e Event) String() string {
	switch e.Character {
	case BackspaceCharacter:
		return fmt.Sprintf("%s<-%s:⌫", e.Key, e.Cause.Moment)
	case OriginCharacter:
		return fmt.Sprintf("%s:origin", e.Key)
	default:
		return fmt.Sprintf("%s<-%s:%q", e.Key, e.Cause.Moment, e.Character)
	}
}

// Validate checks that the event could have been produced by an editor.
func (e Event) Validate() error {
	if e.Key.IsOrigin() {
		if e != OriginEvent {
			return xerrors.Errorf("malformed origin event %s", e)
		}
		return nil
	}
	if e.Key.Moment.Timestamp == 0 {
		return xerrors.Errorf("event %s has a zero timestamp", e)
	}
	if e.Key.Equal(e.Cause) {
		return xerrors.Errorf("event %s is its own cause", e)
	}
	if e.Key.Priority != PriorityFor(e.Character) {
		return xerrors.Errorf("event %s has priority %d, expected %d",
			e, e.Key.Priority, PriorityFor(e.Character))
	}
	return nil
}

// -----------------------------------------------------------------------------
// EventsMessage

// Name returns the name of the message.
func (m EventsMessage) Name() string {
	return "events"
}

// String implements fmt.Stringer.
func (m EventsMessage) String() string {
	return fmt.Sprintf("events{from %c, timestamp %d, %d events}",
		EditorLetter(m.EditorID), m.Timestamp, len(m.Events))
}

// Marshal encodes the message as JSON.
func (m EventsMessage) Marshal() ([]byte, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal %s: %w", m.Name(), err)
	}
	return buf, nil
}

// UnmarshalEventsMessage decodes a message produced by Marshal and validates
// every event in it.
func UnmarshalEventsMessage(data []byte) (EventsMessage, error) {
	var msg EventsMessage
	err := json.Unmarshal(data, &msg)
	if err != nil {
		return EventsMessage{}, xerrors.Errorf("failed to unmarshal events message: %w", err)
	}
	for i, event := range msg.Events {
		err = event.Validate()
		if err != nil {
			return EventsMessage{}, xerrors.Errorf("invalid event #%d: %w", i, err)
		}
	}
	return msg, nil
}

// -----------------------------------------------------------------------------
// Utils

// PriorityFor returns the priority class of a character.
func PriorityFor(character rune) uint32 {
	if character == BackspaceCharacter {
		return DeletePriority
	}
	return InsertPriority
}

// EditorLetter is the one-letter name used to display an editor.
func EditorLetter(editorID int32) rune {
	switch editorID {
	case 0:
		return 'r'
	case 1:
		return 'w'
	case 2:
		return 'j'
	default:
		return '.'
	}
}
