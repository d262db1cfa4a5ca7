package impl

import (
	"Causal-text/backend/types"
	"strings"

	"golang.org/x/exp/slices"
)

// Content is the event store of one editor.
//
// The sequence holds every known event by key. The causal sets keep track of
// the cause -> events relationship; the other way is held by each event's
// Cause field. Events whose cause is unknown wait in pending until it
// arrives, so the tree only ever contains events reachable from the origin.
type Content struct {
	sequence   map[types.Moment]types.Event
	causalSets map[types.Moment]*CausalSet
	pending    *PendingEvents
}

// NewContent returns a store that only knows the origin.
func NewContent() *Content {
	sequence := make(map[types.Moment]types.Event)
	sequence[types.OriginKey.Moment] = types.OriginEvent

	return &Content{
		sequence:   sequence,
		causalSets: make(map[types.Moment]*CausalSet),
		pending:    newPendingEvents(),
	}
}

// AddEvent stores an event. Adding a known event, or the origin, does
// nothing. It returns true if the event was new.
func (c *Content) AddEvent(event types.Event) bool {
	if event.Key.IsOrigin() {
		return false
	}
	if c.Has(event.Key) || c.pending.Contains(event.Key.Moment) {
		return false
	}

	if !c.Has(event.Cause) {
		c.pending.Park(event)
		return true
	}

	c.insert(event)

	// Adding an event may complete the history of parked ones.
	queue := []types.Moment{event.Key.Moment}
	for len(queue) > 0 {
		cause := queue[0]
		queue = queue[1:]
		for _, released := range c.pending.Release(cause) {
			c.insert(released)
			queue = append(queue, released.Key.Moment)
		}
	}
	return true
}

func (c *Content) insert(event types.Event) {
	c.sequence[event.Key.Moment] = event

	causalSet, exists := c.causalSets[event.Cause.Moment]
	if !exists {
		causalSet = &CausalSet{}
		c.causalSets[event.Cause.Moment] = causalSet
	}
	causalSet.Insert(event)
}

// Has tells if the event with the given key is part of the tree.
func (c *Content) Has(key types.EventKey) bool {
	_, exists := c.sequence[key.Moment]
	return exists
}

// Get returns the event with the given key, if it is part of the tree.
func (c *Content) Get(key types.EventKey) (types.Event, bool) {
	event, exists := c.sequence[key.Moment]
	return event, exists
}

// Len returns the number of events in the tree, origin included.
func (c *Content) Len() int {
	return len(c.sequence)
}

// Pending returns the number of events waiting for their cause.
func (c *Content) Pending() int {
	return c.pending.Len()
}

// Flatten walks the causal tree depth first starting at the given cause.
// Siblings are visited in key order.
func (c *Content) Flatten(cause types.EventKey) []types.Event {
	flat := make([]types.Event, 0, len(c.sequence))
	stack := []types.Moment{cause.Moment}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if event, exists := c.sequence[current]; exists {
			flat = append(flat, event)
		}

		causalSet, exists := c.causalSets[current]
		if !exists {
			continue
		}
		// pushed backwards so that the smallest key is popped first
		for i := len(causalSet.events) - 1; i >= 0; i-- {
			child := causalSet.events[i]
			if child.Key.IsOrigin() {
				// Avoid loops: the origin is its own cause.
				continue
			}
			stack = append(stack, child.Key.Moment)
		}
	}
	return flat
}

// FlattenAll walks the whole causal tree, starting at the origin.
func (c *Content) FlattenAll() []types.Event {
	return c.Flatten(types.OriginKey)
}

// FinalEventsStream only keeps the events that produce some output: it goes
// through the flattened tree, pushing characters and popping the previous
// one when a backspace was caused by it.
func (c *Content) FinalEventsStream() []types.Event {
	events := make([]types.Event, 0, len(c.sequence))
	for _, event := range c.FlattenAll() {
		if event.Key.IsOrigin() {
			continue
		}
		if event.IsBackspace() {
			last := len(events) - 1
			if last >= 0 && events[last].Key.Equal(event.Cause) {
				events = events[:last]
			}
			continue
		}
		events = append(events, event)
	}
	return events
}

// Characters returns the current text of the document.
func (c *Content) Characters() string {
	return charactersOf(c.FinalEventsStream())
}

// Events returns a copy of the events of the tree, origin excluded, in key
// order.
func (c *Content) Events() []types.Event {
	events := make([]types.Event, 0, len(c.sequence))
	for _, event := range c.sequence {
		if !event.Key.IsOrigin() {
			events = append(events, event)
		}
	}
	slices.SortFunc(events, func(a, b types.Event) int {
		return a.Compare(b)
	})
	return events
}

// Export returns every event known to the store, origin excluded: the tree
// in flatten order, so that causes come first, then the parked events.
func (c *Content) Export() []types.Event {
	flat := c.FlattenAll()
	events := make([]types.Event, 0, len(flat)+c.pending.Len())
	for _, event := range flat {
		if !event.Key.IsOrigin() {
			events = append(events, event)
		}
	}
	return append(events, c.pending.All()...)
}

// Send copies every event of this store into recipient.
func (c *Content) Send(recipient *Content) {
	if recipient == c {
		return
	}
	for _, event := range c.Export() {
		recipient.AddEvent(event)
	}
}

func charactersOf(events []types.Event) string {
	var sb strings.Builder
	sb.Grow(len(events))
	for _, event := range events {
		sb.WriteRune(event.Character)
	}
	return sb.String()
}
