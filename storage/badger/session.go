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

package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/storage"
)

// SessionStore implements storage.SessionStore for BadgerDB.
type SessionStore struct {
	backend     *Backend
	ttl         time.Duration
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.SessionStore = (*SessionStore)(nil)

// newSessionStore is an internal constructor that returns the concrete type.
func newSessionStore(backend *Backend, ttl time.Duration) (*SessionStore, error) {
	if backend == nil {
		return nil, errors.New("session store: backend is required")
	}
	if ttl < 0 {
		return nil, errors.New("session store: ttl cannot be negative")
	}
	return &SessionStore{
		backend: backend,
		ttl:     ttl,
		logger:  backend.logger,
	}, nil
}

// NewSessionStore creates a session store on an open backend.
// A zero ttl keeps entries until they are invalidated. The caller keeps
// ownership of the backend.
func NewSessionStore(backend *Backend, ttl time.Duration) (storage.SessionStore, error) {
	return newSessionStore(backend, ttl)
}

// OpenSessionStore opens a backend at path (in memory when path is empty)
// and returns a store that closes it on Close.
func OpenSessionStore(path string, ttl time.Duration) (storage.SessionStore, error) {
	backend, err := OpenBackend(path, path == "")
	if err != nil {
		return nil, err
	}
	store, err := newSessionStore(backend, ttl)
	if err != nil {
		backend.Close()
		return nil, err
	}
	store.ownsBackend = true
	return store, nil
}

// Close closes the backend if the store opened it.
func (s *SessionStore) Close() error {
	if !s.ownsBackend || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}

// Transcript returns the cached transcript of a scope.
func (s *SessionStore) Transcript(ctx context.Context, sid core.SessionID, scope string) (storage.TranscriptEntry, error) {
	data, err := s.get(makeTranscriptKey(sid, scope))
	if err != nil {
		return storage.TranscriptEntry{}, err
	}
	return storage.UnmarshalTranscriptEntry(data)
}

// PutTranscript caches a transcript for a scope.
func (s *SessionStore) PutTranscript(ctx context.Context, sid core.SessionID, scope string, entry storage.TranscriptEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.set(makeTranscriptKey(sid, scope), storage.MarshalTranscriptEntry(entry))
}

// ShareText returns the last share text of a feature.
func (s *SessionStore) ShareText(ctx context.Context, sid core.SessionID, feature core.Feature) (string, error) {
	data, err := s.get(makeShareKey(sid, feature))
	if err != nil {
		return "", err
	}
	return storage.UnmarshalText(data)
}

// PutShareText stores the share text of a feature.
func (s *SessionStore) PutShareText(ctx context.Context, sid core.SessionID, feature core.Feature, text string) error {
	return s.set(makeShareKey(sid, feature), storage.MarshalText(text))
}

// QAHistory returns the session's Q&A history, oldest first.
func (s *SessionStore) QAHistory(ctx context.Context, sid core.SessionID) ([]core.QAPair, error) {
	data, err := s.get(makeQAKey(sid))
	if errors.Is(err, storage.ErrNotFound) {
		return []core.QAPair{}, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalQAHistory(data)
}

// AppendQA adds a pair to the session's history in one read-write transaction.
func (s *SessionStore) AppendQA(ctx context.Context, sid core.SessionID, pair core.QAPair) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	key := makeQAKey(sid)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		history := []core.QAPair{}
		item, err := tx.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			err = item.Value(func(val []byte) error {
				var err error
				history, err = storage.UnmarshalQAHistory(val)
				return err
			})
			if err != nil {
				return err
			}
		}

		history = append(history, pair)
		if err := tx.SetEntry(s.entry(key, storage.MarshalQAHistory(history))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Invalidate drops the cached transcript of a scope.
func (s *SessionStore) Invalidate(ctx context.Context, sid core.SessionID, scope string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeTranscriptKey(sid, scope)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// InvalidateSession drops every entry of a session.
func (s *SessionStore) InvalidateSession(ctx context.Context, sid core.SessionID) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	prefix := makeSessionPrefix(sid)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		var keys [][]byte
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		s.logger.Debug("session invalidated", "session", sid, "entries", len(keys))
		return tx.Commit()
	}, true)
}

func (s *SessionStore) entry(key, value []byte) *badger.Entry {
	e := badger.NewEntry(key, value)
	if s.ttl > 0 {
		e = e.WithTTL(s.ttl)
	}
	return e
}

func (s *SessionStore) get(key []byte) ([]byte, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var value []byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)
	return value, err
}

func (s *SessionStore) set(key, value []byte) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.SetEntry(s.entry(key, value)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
