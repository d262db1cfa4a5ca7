package impl

import "Causal-text/backend/peer"

// BroadcastContents sends the events of every editor to every other editor.
// After a broadcast all the editors know the same events.
func BroadcastContents(editors []peer.Editor) {
	for _, sender := range editors {
		for _, recipient := range editors {
			if sender != recipient {
				sender.SendEventsTo(recipient)
			}
		}
	}
}

// ClearContents clears every editor.
func ClearContents(editors []peer.Editor) {
	for _, ed := range editors {
		ed.Clear()
	}
}
