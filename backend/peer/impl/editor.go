package impl

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/types"
	"fmt"

	"golang.org/x/exp/slices"
)

// ID implements peer.Editor
func (e *editor) ID() int32 {
	return e.conf.EditorID
}

func (e *editor) nextMoment() types.Moment {
	return types.Moment{
		EditorID:  e.conf.EditorID,
		Timestamp: e.clock.Next(),
	}
}

func (e *editor) nextEventKey(character rune) types.EventKey {
	return types.EventKey{
		Moment:   e.nextMoment(),
		Priority: types.PriorityFor(character),
	}
}

func (e *editor) addToContent(character rune) {
	key := e.nextEventKey(character)
	e.content.AddEvent(types.Event{
		Key:       key,
		Cause:     e.cursor.eventKey,
		Character: character,
	})
	e.finalEventsStream = e.content.FinalEventsStream()
}

// InsertCharacter implements peer.Editor
func (e *editor) InsertCharacter(character rune) {
	e.mu.Lock()
	e.addToContent(character)
	if character == types.BackspaceCharacter {
		e.moveCursorLeft()
	} else {
		e.moveCursorRight()
	}
	update := e.collectChange()
	e.mu.Unlock()

	e.notifyChange(update)
}

// RemovePreviousCharacter implements peer.Editor
func (e *editor) RemovePreviousCharacter() {
	e.InsertCharacter(types.BackspaceCharacter)
}

// MoveCursorRight implements peer.Editor
func (e *editor) MoveCursorRight() {
	e.mu.Lock()
	e.moveCursorRight()
	update := e.collectChange()
	e.mu.Unlock()

	e.notifyChange(update)
}

// MoveCursorLeft implements peer.Editor
func (e *editor) MoveCursorLeft() {
	e.mu.Lock()
	if !e.moveCursorLeft() {
		e.mu.Unlock()
		return
	}
	update := e.collectChange()
	e.mu.Unlock()

	e.notifyChange(update)
}

func (e *editor) moveCursorRight() {
	e.cursor.position = min(e.cursor.position+1, uint(len(e.finalEventsStream)))
	e.updateCursorEventKey()
}

func (e *editor) moveCursorLeft() bool {
	if e.cursor.position < 1 {
		return false
	}
	e.cursor.position--
	e.updateCursorEventKey()
	return true
}

// updateCursorEventKey anchors the cursor to the event on its left. The
// anchor is kept if the position is past the end of the stream.
func (e *editor) updateCursorEventKey() {
	if e.cursor.position == 0 {
		e.cursor.eventKey = types.OriginKey
		return
	}
	if int(e.cursor.position) <= len(e.finalEventsStream) {
		e.cursor.eventKey = e.finalEventsStream[e.cursor.position-1].Key
	}
}

// findAndSetNewCursorPosition puts the cursor back after its anchor once the
// stream changed under it. If the anchor was cancelled, the cursor moves to
// the closest surviving event preceding it in the tree. If the anchor is not
// in the tree at all, the position is clamped and the anchor recomputed.
func (e *editor) findAndSetNewCursorPosition() {
	if e.cursor.eventKey.IsOrigin() {
		e.cursor.position = 0
		return
	}

	for i, event := range e.finalEventsStream {
		if event.Key.Equal(e.cursor.eventKey) {
			e.cursor.position = uint(i + 1)
			return
		}
	}

	if !e.content.Has(e.cursor.eventKey) {
		e.cursor.position = min(e.cursor.position, uint(len(e.finalEventsStream)))
		e.updateCursorEventKey()
		return
	}

	survivors := 0
	for _, event := range e.content.FlattenAll() {
		if event.Key.Equal(e.cursor.eventKey) {
			break
		}
		if survivors < len(e.finalEventsStream) && e.finalEventsStream[survivors].Key.Equal(event.Key) {
			survivors++
		}
	}

	e.log.Debug().Msgf("cursor anchor %s was cancelled, moving cursor to %d",
		e.cursor.eventKey, survivors)
	e.cursor.position = uint(survivors)
	e.updateCursorEventKey()
}

// Clear implements peer.Editor
func (e *editor) Clear() {
	e.mu.Lock()
	e.content = NewContent()
	e.finalEventsStream = e.content.FinalEventsStream()
	e.cursor = originCursor
	update := e.collectChange()
	e.mu.Unlock()

	e.notifyChange(update)
}

// ReceiveEventsFrom implements peer.Editor. The sender is only locked while
// its snapshot is taken, so two editors can merge into each other
// concurrently.
func (e *editor) ReceiveEventsFrom(sender peer.Editor) {
	if sender == nil {
		return
	}
	e.ReceiveSnapshot(sender.Snapshot())
}

// SendEventsTo implements peer.Editor
func (e *editor) SendEventsTo(recipient peer.Editor) {
	if recipient == nil {
		return
	}
	recipient.ReceiveEventsFrom(e)
}

// Snapshot implements peer.Editor
func (e *editor) Snapshot() types.EventsMessage {
	e.mu.Lock()
	defer e.mu.Unlock()

	return types.EventsMessage{
		EditorID:  e.conf.EditorID,
		Timestamp: e.clock.Get(),
		Events:    e.content.Export(),
	}
}

// ReceiveSnapshot implements peer.Editor
func (e *editor) ReceiveSnapshot(msg types.EventsMessage) {
	e.mu.Lock()
	added := 0
	for _, event := range msg.Events {
		if e.content.AddEvent(event) {
			added++
		}
	}

	e.finalEventsStream = e.content.FinalEventsStream()
	e.findAndSetNewCursorPosition()
	e.clock.Sync(msg.Timestamp)

	e.log.Info().Msgf("received %d new events out of %s, %d pending",
		added, msg, e.content.Pending())
	update := e.collectChange()
	e.mu.Unlock()

	e.notifyChange(update)
}

// Timestamp implements peer.Editor
func (e *editor) Timestamp() types.Timestamp {
	return e.clock.Get()
}

// Text implements peer.Editor
func (e *editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return charactersOf(e.finalEventsStream)
}

// CursorPosition implements peer.Editor
func (e *editor) CursorPosition() uint {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cursor.position
}

// CursorMoment implements peer.Editor
func (e *editor) CursorMoment() types.Moment {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cursor.eventKey.Moment
}

// FlatSequence implements peer.Editor
func (e *editor) FlatSequence() []types.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.content.FlattenAll()
}

// FinalSequence implements peer.Editor
func (e *editor) FinalSequence() []types.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.finalEventsStream)
}

// change is the state of the editor handed to the host after an operation.
type change struct {
	content       string
	position      uint
	moment        types.Moment
	flatSequence  []types.Event
	finalSequence []types.Event
	timestamp     types.Timestamp
	length        int
}

// collectChange must be called with e.mu held.
func (e *editor) collectChange() change {
	c := change{
		position:  e.cursor.position,
		moment:    e.cursor.eventKey.Moment,
		timestamp: e.clock.Get(),
		length:    len(e.finalEventsStream),
	}
	if e.conf.Model != nil {
		c.content = charactersOf(e.finalEventsStream)
		c.flatSequence = e.content.FlattenAll()
		c.finalSequence = slices.Clone(e.finalEventsStream)
	}
	return c
}

// notifyChange is called once e.mu is released, so the model and the board
// are free to read the editor back. Concurrent operations may deliver their
// changes out of order.
func (e *editor) notifyChange(c change) {
	model := e.conf.Model
	if model != nil {
		model.SetContent(c.content)
		model.SetCursorPosition(c.position)
		model.SetCursorMoment(c.moment)
		model.SetFlatSequence(c.flatSequence)
		model.SetFinalSequence(c.finalSequence)
	}
	e.addEditorInfosToBoard(c)
}

func (e *editor) addEditorInfosToBoard(c change) {
	if e.conf.Board == nil {
		return
	}

	name := infosPanelName(e.conf.EditorID)
	panel, exists := e.conf.Board.Panel(name)
	if !exists {
		e.log.Warn().Msgf("can't find panel %s to fill with editor's infos, skip update until it exists", name)
		return
	}

	panel.SetInfos(fmt.Sprintf("timestamp %d - length %d | cursor %d %s",
		c.timestamp,
		c.length,
		c.position,
		c.moment,
	))
}
