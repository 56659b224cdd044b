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

// Package server is the web UI and JSON API of Natiq.
//
// Every request belongs to a session identified by the natiq_session
// cookie. Feature requests of one session run one at a time on the
// application's worker pool; the request context cancels an invocation
// when the client goes away.
//
// Transcript features accept multipart forms with a "file" upload, a
// "url" or typed "text". Script generation, speech, sharing and session
// management accept JSON bodies.
package server
