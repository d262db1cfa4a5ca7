package types

// Timestamp is the local counter of a replica. It only grows.
type Timestamp = uint32

const (
	// BackspaceCharacter is the "delete previous character" marker.
	BackspaceCharacter rune = '\x08'
	// OriginCharacter is carried by the origin event and is never printed.
	OriginCharacter rune = '\t'
)

const (
	InsertPriority    uint32 = 1
	DeletePriority    uint32 = 2
	VeryLargePriority uint32 = 1000
)

// Moment is a logical timestamp: the replica that produced an event and the
// value of its local counter at that time.
type Moment struct {
	EditorID  int32     `json:"editor_id"`
	Timestamp Timestamp `json:"timestamp"`
}

// EventKey identifies an event. Two keys with the same moment are the same
// key, whatever their priority.
type EventKey struct {
	Moment   Moment `json:"moment"`
	Priority uint32 `json:"priority"`
}

// Event is one immutable edit: a character anchored after its cause.
type Event struct {
	Key       EventKey `json:"key"`
	Cause     EventKey `json:"cause"`
	Character rune     `json:"character"`
}

// OriginKey is the key of the root of every causal tree.
var OriginKey = EventKey{
	Moment: Moment{
		EditorID:  -1,
		Timestamp: 0,
	},
	Priority: VeryLargePriority,
}

// OriginEvent is its own cause.
var OriginEvent = Event{
	Key:       OriginKey,
	Cause:     OriginKey,
	Character: OriginCharacter,
}

// EventsMessage is a point-in-time copy of a replica's event store, as handed
// to another replica.
type EventsMessage struct {
	EditorID  int32     `json:"editor_id"`
	Timestamp Timestamp `json:"timestamp"`
	Events    []Event   `json:"events"`
}
