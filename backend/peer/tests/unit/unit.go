package unit

import (
	"Causal-text/backend/peer"
	"Causal-text/backend/peer/impl"
	"Causal-text/backend/peer/tests"
)

var editorFac peer.Factory = impl.NewEditor

func newEditor(editorID int32) peer.Editor {
	return editorFac(tests.QuietConfiguration(editorID))
}
