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

package core

import "errors"

// Missing-input errors. These are reported before any pipeline stage runs.
var (
	// ErrMissingInput indicates a request carried nothing to work on.
	ErrMissingInput = errors.New("missing input")

	// ErrNoSource indicates none of file, URL or text was provided.
	ErrNoSource = errors.New("provide a file, a URL or text")

	// ErrEmptyQuestion indicates a Q&A request without a question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyTopic indicates a script request without a topic.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrInvalidDuration indicates a script duration outside 1..60 minutes.
	ErrInvalidDuration = errors.New("duration must be between 1 and 60 minutes")

	// ErrInvalidLanguage indicates an unsupported language code.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrInvalidMode indicates an unknown processing mode.
	ErrInvalidMode = errors.New("mode must be classic or llm")

	// ErrUnknownFeature indicates a feature name that is not registered.
	ErrUnknownFeature = errors.New("unknown feature")
)

// Processing errors.
var (
	// ErrMalformedOutput indicates an external processor returned output
	// that could not be interpreted.
	ErrMalformedOutput = errors.New("malformed processor output")

	// ErrEmptyResponse indicates an external processor returned no content.
	ErrEmptyResponse = errors.New("empty processor response")
)
