package badger

import (
	"fmt"

	"github.com/poiesic/natiq/core"
)

// Key prefixes for session entries
const (
	sessionPrefix   = "sess"
	transcriptInfix = "tr"
	shareInfix      = "share"
	qaInfix         = "qa"
)

// makeSessionPrefix generates the prefix shared by every key of a session.
// Format: sess:{sid}:
func makeSessionPrefix(sid core.SessionID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", sessionPrefix, sid))
}

// makeTranscriptKey generates a key for a cached transcript.
// Format: sess:{sid}:tr:{scope}
func makeTranscriptKey(sid core.SessionID, scope string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", sessionPrefix, sid, transcriptInfix, scope))
}

// makeShareKey generates a key for a feature's share text.
// Format: sess:{sid}:share:{feature}
func makeShareKey(sid core.SessionID, feature core.Feature) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", sessionPrefix, sid, shareInfix, feature))
}

// makeQAKey generates the key of a session's Q&A history.
// Format: sess:{sid}:qa
func makeQAKey(sid core.SessionID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", sessionPrefix, sid, qaInfix))
}
