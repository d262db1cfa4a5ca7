package tests

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/types"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// QuietConfiguration returns the configuration of an editor that does not log.
func QuietConfiguration(editorID int32) peer.Configuration {
	return peer.Configuration{
		EditorID:  editorID,
		LogOutput: io.Discard,
		LogLevel:  zerolog.Disabled,
	}
}

// TypeString plays every character of content on the editor.
func TypeString(editor peer.Editor, content string) {
	for _, char := range content {
		editor.InsertCharacter(char)
	}
}

// MoveRight moves the cursor n times to the right.
func MoveRight(editor peer.Editor, n int) {
	for i := 0; i < n; i++ {
		editor.MoveCursorRight()
	}
}

// MoveLeft moves the cursor n times to the left.
func MoveLeft(editor peer.Editor, n int) {
	for i := 0; i < n; i++ {
		editor.MoveCursorLeft()
	}
}

// RecordingModel keeps the last values written by an editor.
//
// - implements peer.Model
type RecordingModel struct {
	sync.Mutex
	Content        string
	CursorPosition uint
	CursorMoment   types.Moment
	FlatSequence   []types.Event
	FinalSequence  []types.Event
	Updates        int
}

func (m *RecordingModel) SetContent(content string) {
	m.Lock()
	defer m.Unlock()
	m.Content = content
	m.Updates++
}

func (m *RecordingModel) SetCursorPosition(position uint) {
	m.Lock()
	defer m.Unlock()
	m.CursorPosition = position
}

func (m *RecordingModel) SetCursorMoment(moment types.Moment) {
	m.Lock()
	defer m.Unlock()
	m.CursorMoment = moment
}

func (m *RecordingModel) SetFlatSequence(events []types.Event) {
	m.Lock()
	defer m.Unlock()
	m.FlatSequence = events
}

func (m *RecordingModel) SetFinalSequence(events []types.Event) {
	m.Lock()
	defer m.Unlock()
	m.FinalSequence = events
}

// ReadingModel reads the text of its editor back on every content update.
//
// - implements peer.Model
type ReadingModel struct {
	RecordingModel
	Editor peer.Editor
	Texts  []string
}

func (m *ReadingModel) SetContent(content string) {
	m.RecordingModel.SetContent(content)
	if m.Editor == nil {
		return
	}

	text := m.Editor.Text()
	m.Lock()
	defer m.Unlock()
	m.Texts = append(m.Texts, text)
}

// Panel records the infos written into it.
//
// - implements peer.InfoPanel
type Panel struct {
	Infos string
}

func (p *Panel) SetInfos(infos string) {
	p.Infos = infos
}

// Board is a fixed set of panels.
//
// - implements peer.InfoBoard
type Board map[string]*Panel

func (b Board) Panel(name string) (peer.InfoPanel, bool) {
	panel, exists := b[name]
	if !exists {
		return nil, false
	}
	return panel, true
}
