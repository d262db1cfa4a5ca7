package impl

import (
	"Causal-text/backend/types"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

// LogicalClock is a struct that holds the local counter of the editor
type LogicalClock struct {
	current uint32
}

// Next returns the current timestamp and increments the clock atomically
func (lc *LogicalClock) Next() types.Timestamp {
	return atomic.AddUint32(&lc.current, 1) - 1
}

// Get returns the timestamp the clock will hand out next
func (lc *LogicalClock) Get() types.Timestamp {
	return atomic.LoadUint32(&lc.current)
}

// Sync moves the clock past a remote timestamp: the next local timestamp is
// strictly greater than both clocks.
func (lc *LogicalClock) Sync(remote types.Timestamp) {
	for {
		local := atomic.LoadUint32(&lc.current)
		next := 1 + max(local, remote)
		if atomic.CompareAndSwapUint32(&lc.current, local, next) {
			return
		}
	}
}

// Cursor is where the next character goes: after the event with the given key.
type Cursor struct {
	position uint
	eventKey types.EventKey
}

var originCursor = Cursor{
	position: 0,
	eventKey: types.OriginKey,
}

// CausalSet holds the events sharing the same cause, ordered by key.
type CausalSet struct {
	events []types.Event
}

func compareEventToKey(e types.Event, key types.EventKey) int {
	return e.Key.Compare(key)
}

// Insert adds an event if its key is not already in the set.
func (cs *CausalSet) Insert(event types.Event) bool {
	i, found := slices.BinarySearchFunc(cs.events, event.Key, compareEventToKey)
	if found {
		return false
	}
	cs.events = slices.Insert(cs.events, i, event)
	return true
}

// Len returns the number of events in the set
func (cs *CausalSet) Len() int {
	return len(cs.events)
}

// PendingEvents holds the events whose cause is not known yet, grouped by
// the missing cause.
type PendingEvents struct {
	byCause map[types.Moment][]types.Event
	keys    mapset.Set[types.Moment]
}

func newPendingEvents() *PendingEvents {
	return &PendingEvents{
		byCause: make(map[types.Moment][]types.Event),
		keys:    mapset.NewThreadUnsafeSet[types.Moment](),
	}
}

// Park stores an event until its cause shows up.
func (p *PendingEvents) Park(event types.Event) {
	if !p.keys.Add(event.Key.Moment) {
		return
	}
	cause := event.Cause.Moment
	p.byCause[cause] = append(p.byCause[cause], event)
}

// Release removes and returns the events waiting for the given cause.
func (p *PendingEvents) Release(cause types.Moment) []types.Event {
	events, exists := p.byCause[cause]
	if !exists {
		return nil
	}
	delete(p.byCause, cause)
	for _, event := range events {
		p.keys.Remove(event.Key.Moment)
	}
	return events
}

// Contains tells if an event with the given moment is parked.
func (p *PendingEvents) Contains(moment types.Moment) bool {
	return p.keys.Contains(moment)
}

// Len returns the number of parked events
func (p *PendingEvents) Len() int {
	return p.keys.Cardinality()
}

// All returns a copy of the parked events, ordered by key.
func (p *PendingEvents) All() []types.Event {
	all := make([]types.Event, 0, p.Len())
	for _, events := range p.byCause {
		all = append(all, events...)
	}
	slices.SortFunc(all, func(a, b types.Event) int {
		return a.Compare(b)
	})
	return all
}
