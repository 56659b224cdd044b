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

import (
	"fmt"
	"slices"
	"strings"
)

// Languages accepted for transcription. "auto" means no hint.
var TranscriptionLanguages = []string{"auto", "en", "ar"}

// Languages accepted as translation targets and narration languages.
var TargetLanguages = []string{"en", "ar"}

// PodcastStyles are the styles offered for podcast generation.
var PodcastStyles = []string{"informative", "fun", "business", "educational"}

// VideoStyles are the styles offered for video script generation.
var VideoStyles = []string{"educational", "informative", "motivational", "business", "fun"}

const (
	// MinDuration and MaxDuration bound script durations in minutes.
	MinDuration = 1
	MaxDuration = 60
)

// ParseFeature maps a feature name to a Feature.
func ParseFeature(name string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Features, f) {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

// ValidateTranscriptionLanguage checks a transcription language hint.
// The empty string is treated as "auto".
func ValidateTranscriptionLanguage(lang string) error {
	if lang == "" || slices.Contains(TranscriptionLanguages, lang) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
}

// ValidateTargetLanguage checks a translation or narration language.
func ValidateTargetLanguage(lang string) error {
	if slices.Contains(TargetLanguages, lang) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
}

// ValidateScriptRequest validates the shared inputs of podcast and video
// script generation.
//
// Validation rules:
//   - topic must not be blank
//   - duration must be within MinDuration..MaxDuration
//
// Style is free-form; the UI offers PodcastStyles and VideoStyles.
func ValidateScriptRequest(topic string, duration int) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("%w: %w", ErrMissingInput, ErrEmptyTopic)
	}
	if duration < MinDuration || duration > MaxDuration {
		return ErrInvalidDuration
	}
	return nil
}

// ValidateQuestion checks that a Q&A question is present.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: %w", ErrMissingInput, ErrEmptyQuestion)
	}
	return nil
}
