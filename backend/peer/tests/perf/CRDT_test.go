//go:build performance
// +build performance

package perf

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/peer/impl"
	"Causal-text/backend/peer/tests"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var editorFac peer.Factory = impl.NewEditor

type speedThresholds struct {
	name    string
	maxTime time.Duration
}

func assessSpeed(t *testing.T, res testing.BenchmarkResult, thresholds []speedThresholds) {
	perOp := time.Duration(res.NsPerOp())
	for _, threshold := range thresholds {
		if perOp <= threshold.maxTime {
			t.Logf("%s: %s per op", threshold.name, perOp)
			return
		}
	}
	t.Errorf("too slow: %s per op", perOp)
}

// This test executes the exact same function as the BenchmarkTyping below.
// Its goal is mainly to raise any error that could occur during its execution as the benchmark hides them.
func Test_CRDT_Typing_Benchmark_Correctness(t *testing.T) {
	runTyping(t, 500)
}

// Run BenchmarkTyping and compare results to reference assessments
func Test_CRDT_BenchmarkTyping(t *testing.T) {
	res := testing.Benchmark(BenchmarkTyping)

	assessSpeed(t, res, []speedThresholds{
		{"speed great", 500 * time.Millisecond},
		{"speed ok", 2 * time.Second},
		{"speed passable", 10 * time.Second},
	})
}

// Type N random keys on one editor. Every key walks the whole tree, so this
// is quadratic in N.
func BenchmarkTyping(b *testing.B) {
	for i := 0; i < b.N; i++ {
		runTyping(b, 500)
	}
}

func runTyping(t require.TestingT, keys int) {
	rand.Seed(1)
	editor := editorFac(tests.QuietConfiguration(0))

	length := 0
	for k := 0; k < keys; k++ {
		switch rand.Intn(8) {
		case 0:
			if editor.CursorPosition() > 0 {
				length--
			}
			editor.RemovePreviousCharacter()
		case 1:
			editor.MoveCursorLeft()
		default:
			editor.InsertCharacter(rune('a' + rand.Intn(26)))
			length++
		}
	}

	require.Equal(t, length, len(editor.Text()))
}

// This test executes the exact same function as the BenchmarkMerge below.
func Test_CRDT_Merge_Benchmark_Correctness(t *testing.T) {
	runMerge(t, 5, 200)
}

// Run BenchmarkMerge and compare results to reference assessments
func Test_CRDT_BenchmarkMerge(t *testing.T) {
	res := testing.Benchmark(BenchmarkMerge)

	assessSpeed(t, res, []speedThresholds{
		{"speed great", 1 * time.Second},
		{"speed ok", 5 * time.Second},
		{"speed passable", 15 * time.Second},
	})
}

// Each editor types its own text then all editors are merged together.
func BenchmarkMerge(b *testing.B) {
	for i := 0; i < b.N; i++ {
		runMerge(b, 5, 200)
	}
}

func runMerge(t require.TestingT, editorN, keys int) {
	editors := make([]peer.Editor, editorN)
	for i := range editors {
		editors[i] = editorFac(tests.QuietConfiguration(int32(i)))
		for k := 0; k < keys; k++ {
			editors[i].InsertCharacter(rune('a' + (k+i)%26))
		}
	}

	impl.BroadcastContents(editors)

	for _, editor := range editors {
		require.Equal(t, editorN*keys, len(editor.Text()))
		require.Equal(t, editors[0].Text(), editor.Text())
	}
}
