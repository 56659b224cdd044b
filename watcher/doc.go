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

// Package watcher turns a folder into an inbox for Natiq.
//
// A Watcher follows one directory with fsnotify and hands every file that
// appears in it to a Handler once the file has stopped changing. Events
// for the same path are coalesced, so a file written in many small pieces
// is handled once.
//
// # Inbox
//
// Inbox is the Handler used by "natiq watch". Audio and video files are
// transcribed, plain text files are read as they are, and anything else is
// skipped. Each file runs in its own session on the App's worker pool, its
// share text is written to the processed/ folder next to it, and the
// result is shared to the configured channels.
//
// # Usage
//
//	inbox, err := watcher.NewInbox(app, cfg.Watch)
//	if err != nil {
//	    return err
//	}
//	w, err := watcher.New(cfg.Watch.Dir, inbox.Handle)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx)
package watcher
