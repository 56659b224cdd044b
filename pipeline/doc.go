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

// Package pipeline implements natiq's seven features on top of one
// chunked processing skeleton.
//
// # Stages
//
// Every invocation moves through the same stages:
//
//	acquire -> transcribe -> chunk -> process -> aggregate -> format
//
// Typed text skips acquire and transcribe. Uploads and URLs are transcribed
// once per session and feature; the transcript is cached in the session
// store keyed by a fingerprint of the source, so asking a second question
// about the same video does not transcribe it again.
//
// A failure is returned as a *StageError naming the feature and stage. The
// wrapped error keeps the upstream message, including HTTP status codes
// and bodies, unchanged.
//
// # Templates
//
// Template[R] processes chunks strictly in order. Call errors always abort.
// Output that cannot be parsed aborts strict templates and degrades
// tolerant ones (diarization, sentiment) to a fallback built from the raw
// text.
//
// # Concurrency
//
// Service methods are safe for concurrent use. Runner bounds how many
// invocations run at once and serializes invocations of one session.
//
// # Usage
//
//	svc, err := pipeline.NewService(provider,
//	    pipeline.WithMedia(acquirer, transcriber),
//	    pipeline.WithStore(store))
//	if err != nil {
//	    return err
//	}
//	res, err := svc.Ask(ctx, sid, pipeline.QARequest{
//	    Source:   pipeline.Source{URL: url},
//	    Question: "Who is the guest?",
//	})
package pipeline
