package integration

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/peer/impl"
	"Causal-text/backend/peer/tests"
	"Causal-text/backend/types"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"pgregory.net/rapid"
)

var editorFac peer.Factory = impl.NewEditor

func newEditors(n int) []peer.Editor {
	editors := make([]peer.Editor, n)
	for i := range editors {
		editors[i] = editorFac(tests.QuietConfiguration(int32(i)))
	}
	return editors
}

var alphabet = []rune{'a', 'b', 'c', 'x', 'y', 'z', ' ', types.BackspaceCharacter}

// A single editor behaves like a plain slice of runes with a cursor.
func Test_CRDT_Integration_Single_Editor_Model(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		editor := editorFac(tests.QuietConfiguration(0))
		var chars []rune
		pos := 0

		t.Repeat(map[string]func(*rapid.T){
			"insert": func(t *rapid.T) {
				char := rapid.RuneFrom([]rune("abcxyz ")).Draw(t, "char")
				editor.InsertCharacter(char)
				chars = append(chars[:pos], append([]rune{char}, chars[pos:]...)...)
				pos++
			},
			"backspace": func(t *rapid.T) {
				editor.RemovePreviousCharacter()
				if pos > 0 {
					chars = append(chars[:pos-1], chars[pos:]...)
					pos--
				}
			},
			"left": func(t *rapid.T) {
				editor.MoveCursorLeft()
				if pos > 0 {
					pos--
				}
			},
			"right": func(t *rapid.T) {
				editor.MoveCursorRight()
				if pos < len(chars) {
					pos++
				}
			},
			"": func(t *rapid.T) {
				if editor.Text() != string(chars) {
					t.Fatalf("content mismatch: want %q but got %q", string(chars), editor.Text())
				}
				if editor.CursorPosition() != uint(pos) {
					t.Fatalf("cursor mismatch: want %d but got %d", pos, editor.CursorPosition())
				}
			},
		})
	})
}

// Editors editing and merging at random converge once they all saw the same
// events, whatever the order of the merges.
func Test_CRDT_Integration_Convergence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 4).Draw(t, "editors")
		editors := newEditors(n)

		t.Repeat(map[string]func(*rapid.T){
			"type": func(t *rapid.T) {
				i := rapid.IntRange(0, n-1).Draw(t, "editor")
				char := rapid.SampledFrom(alphabet).Draw(t, "char")
				editors[i].InsertCharacter(char)
			},
			"move": func(t *rapid.T) {
				i := rapid.IntRange(0, n-1).Draw(t, "editor")
				if rapid.Bool().Draw(t, "right") {
					editors[i].MoveCursorRight()
				} else {
					editors[i].MoveCursorLeft()
				}
			},
			"send": func(t *rapid.T) {
				from := rapid.IntRange(0, n-1).Draw(t, "from")
				to := rapid.IntRange(0, n-1).Draw(t, "to")
				editors[from].SendEventsTo(editors[to])
			},
		})

		impl.BroadcastContents(editors)

		for _, editor := range editors[1:] {
			if editor.Text() != editors[0].Text() {
				t.Fatalf("editors diverged: %q vs %q", editors[0].Text(), editor.Text())
			}
			require.Equal(t, editors[0].FlatSequence(), editor.FlatSequence())
		}

		// > fresh editors receiving the snapshots in any order agree too
		snapshots := make([]types.EventsMessage, n)
		for i, editor := range editors {
			snapshots[i] = editor.Snapshot()
		}
		order := rapid.Permutation(snapshots).Draw(t, "order")
		late := editorFac(tests.QuietConfiguration(int32(n)))
		for _, snapshot := range order {
			late.ReceiveSnapshot(snapshot)
		}
		if late.Text() != editors[0].Text() {
			t.Fatalf("late editor diverged: %q vs %q", editors[0].Text(), late.Text())
		}
	})
}

// Test_CRDT_Integration_Concurrent_Editors lets several goroutines type and
// merge at the same time. All editors must agree once the dust settles.
func Test_CRDT_Integration_Concurrent_Editors(t *testing.T) {
	const n = 4
	const keystrokes = 200

	editors := newEditors(n)
	wg := sync.WaitGroup{}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			r := rand.New(rand.NewSource(uint64(i)))
			for k := 0; k < keystrokes; k++ {
				switch r.Intn(6) {
				case 0:
					editors[i].RemovePreviousCharacter()
				case 1:
					editors[i].MoveCursorLeft()
				case 2:
					editors[(i+1)%n].ReceiveEventsFrom(editors[i])
				default:
					editors[i].InsertCharacter(rune('a' + r.Intn(26)))
				}
			}
		}(i)
	}
	wg.Wait()

	impl.BroadcastContents(editors)

	for _, editor := range editors[1:] {
		require.Equal(t, editors[0].Text(), editor.Text())
		require.Equal(t, editors[0].FinalSequence(), editor.FinalSequence())
	}
}

// Test_CRDT_Integration_Broadcast_Then_Clear replays a short session and
// checks that clearing all editors gives a fresh start.
func Test_CRDT_Integration_Broadcast_Then_Clear(t *testing.T) {
	editors := newEditors(3)

	tests.TypeString(editors[0], "Rust")
	impl.BroadcastContents(editors)
	for _, editor := range editors {
		require.Equal(t, "Rust", editor.Text())
	}

	tests.MoveRight(editors[1], 4)
	tests.TypeString(editors[1], " wasm")
	tests.MoveRight(editors[2], 4)
	tests.TypeString(editors[2], " Js")
	impl.BroadcastContents(editors)

	text := editors[0].Text()
	require.Len(t, text, len("Rust wasm Js"))
	for _, editor := range editors {
		require.Equal(t, text, editor.Text())
	}

	impl.ClearContents(editors)
	for _, editor := range editors {
		require.Equal(t, "", editor.Text())
		require.Equal(t, uint(0), editor.CursorPosition())
	}

	tests.TypeString(editors[2], "again")
	impl.BroadcastContents(editors)
	for _, editor := range editors {
		require.Equal(t, "again", editor.Text())
	}
}
