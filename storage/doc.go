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

// Package storage provides the session storage abstraction for natiq.
//
// A session is one browser session of the web UI (identified by the
// natiq_session cookie) or one CLI run. The store caches what a session
// has already paid for: transcripts per feature scope, the last share text
// of every feature and the Q&A history.
//
// # Constructor Return Type Pattern
//
// Public constructors return the SessionStore interface:
//
//	store, err := badger.NewSessionStore(backend, 2*time.Hour)
//
// Internal constructors (newSessionStore) may return concrete types since
// they're only used within the implementation package.
//
// # Expiry
//
// Every entry is written with the store's TTL. An expired entry behaves
// exactly like a missing one and reads return ErrNotFound. Writing any entry
// of a session does not extend the others.
//
// # Encoding
//
// Values are encoded with mus-go. Keys are plain strings scoped by session:
//
//	sess:{sid}:tr:{scope}
//	sess:{sid}:share:{feature}
//	sess:{sid}:qa
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore(time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
package storage
