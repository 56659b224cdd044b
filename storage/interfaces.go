// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"time"

	"github.com/poiesic/natiq/core"
)

// TranscriptEntry is a transcript cached for one session and scope.
type TranscriptEntry struct {
	// SourceKey identifies the media the transcript came from: the content
	// hash of an upload or the ID of a URL. A different key means a new
	// source and the entry must not be reused.
	SourceKey string

	// Language is the transcription hint the text was produced with.
	Language string

	Text      string
	CreatedAt time.Time
}

// SessionStore holds per-session state of the web UI and CLI runs.
// Implementations must be thread-safe and support concurrent access.
// Every entry expires after the store's TTL.
type SessionStore interface {
	// Transcript returns the cached transcript of a scope.
	// Returns ErrNotFound if nothing is cached.
	Transcript(ctx context.Context, sid core.SessionID, scope string) (TranscriptEntry, error)

	// PutTranscript caches a transcript, replacing any previous entry of the scope.
	PutTranscript(ctx context.Context, sid core.SessionID, scope string, entry TranscriptEntry) error

	// ShareText returns the last share text produced by a feature.
	// Returns ErrNotFound if the feature has not produced one.
	ShareText(ctx context.Context, sid core.SessionID, feature core.Feature) (string, error)

	// PutShareText stores the share text of a feature.
	PutShareText(ctx context.Context, sid core.SessionID, feature core.Feature, text string) error

	// QAHistory returns the session's questions and answers, oldest first.
	// An unknown session has an empty history.
	QAHistory(ctx context.Context, sid core.SessionID) ([]core.QAPair, error)

	// AppendQA adds one question and answer to the session's history.
	AppendQA(ctx context.Context, sid core.SessionID, pair core.QAPair) error

	// Invalidate drops the cached transcript of a scope.
	// Dropping a missing entry is not an error.
	Invalidate(ctx context.Context, sid core.SessionID, scope string) error

	// InvalidateSession drops everything stored for a session.
	InvalidateSession(ctx context.Context, sid core.SessionID) error

	// Close releases the store.
	Close() error
}
