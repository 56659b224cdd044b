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
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/natiq/core"
)

// transcriptEntryMUS encodes a TranscriptEntry with CreatedAt in Unix microseconds.
var transcriptEntryMUS = transcriptEntrySer{}

type transcriptEntrySer struct{}

func (transcriptEntrySer) Marshal(v TranscriptEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.SourceKey, bs)
	n += ord.String.Marshal(v.Language, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return n + varint.Int64.Marshal(v.CreatedAt.UnixMicro(), bs[n:])
}

func (transcriptEntrySer) Unmarshal(bs []byte) (v TranscriptEntry, n int, err error) {
	v.SourceKey, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Language, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (transcriptEntrySer) Size(v TranscriptEntry) (size int) {
	size = ord.String.Size(v.SourceKey)
	size += ord.String.Size(v.Language)
	size += ord.String.Size(v.Text)
	return size + varint.Int64.Size(v.CreatedAt.UnixMicro())
}

// qaHistoryMUS encodes a history as a length followed by question/answer pairs.
var qaHistoryMUS = qaHistorySer{}

type qaHistorySer struct{}

func (qaHistorySer) Marshal(v []core.QAPair, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, pair := range v {
		n += ord.String.Marshal(pair.Question, bs[n:])
		n += ord.String.Marshal(pair.Answer, bs[n:])
	}
	return
}

func (qaHistorySer) Unmarshal(bs []byte) (v []core.QAPair, n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	// Each pair takes at least two length bytes.
	if length < 0 || length > (len(bs)-n)/2 {
		err = ErrSerializationFailed
		return
	}
	v = make([]core.QAPair, 0, length)
	for range length {
		var pair core.QAPair
		var n1 int
		pair.Question, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		pair.Answer, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v = append(v, pair)
	}
	return
}

func (qaHistorySer) Size(v []core.QAPair) (size int) {
	size = varint.Int.Size(len(v))
	for _, pair := range v {
		size += ord.String.Size(pair.Question)
		size += ord.String.Size(pair.Answer)
	}
	return
}

// MarshalTranscriptEntry serializes a TranscriptEntry to bytes.
func MarshalTranscriptEntry(entry TranscriptEntry) []byte {
	buf := make([]byte, transcriptEntryMUS.Size(entry))
	transcriptEntryMUS.Marshal(entry, buf)
	return buf
}

// UnmarshalTranscriptEntry deserializes a TranscriptEntry from bytes.
func UnmarshalTranscriptEntry(data []byte) (TranscriptEntry, error) {
	entry, n, err := transcriptEntryMUS.Unmarshal(data)
	if err != nil {
		return TranscriptEntry{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return TranscriptEntry{}, ErrTruncatedData
	}
	return entry, nil
}

// MarshalQAHistory serializes a Q&A history to bytes.
func MarshalQAHistory(history []core.QAPair) []byte {
	buf := make([]byte, qaHistoryMUS.Size(history))
	qaHistoryMUS.Marshal(history, buf)
	return buf
}

// UnmarshalQAHistory deserializes a Q&A history from bytes.
func UnmarshalQAHistory(data []byte) ([]core.QAPair, error) {
	history, n, err := qaHistoryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, ErrTruncatedData
	}
	return history, nil
}

// MarshalText serializes a plain string value.
func MarshalText(text string) []byte {
	buf := make([]byte, ord.String.Size(text))
	ord.String.Marshal(text, buf)
	return buf
}

// UnmarshalText deserializes a plain string value.
func UnmarshalText(data []byte) (string, error) {
	text, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return "", ErrTruncatedData
	}
	return text, nil
}
