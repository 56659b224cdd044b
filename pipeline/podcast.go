package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/chunker"
	"github.com/poiesic/natiq/core"
)

const (
	wordsPerMinute     = 150
	podcastPartWords   = 2500
	podcastMaxLength   = 2500
	podcastTokenMargin = 200
)

var (
	// A leading speaker prefix, optionally doubled ("Host: Host: ...").
	speakerPrefix = regexp.MustCompile(`(?i)^(host:|guest:)\s*(?:(?:host:|guest:)\s*)?`)

	// Turn markers inside a cleaned script.
	turnMarker = regexp.MustCompile(`Host:|Guest:`)
)

// PodcastRequest asks for a Host/Guest dialogue.
type PodcastRequest struct {
	Topic    string
	Style    string
	Duration int
	Model    string
}

// PodcastResult holds the cleaned script and its structured form.
type PodcastResult struct {
	Script    string
	Podcast   core.PodcastScript
	Pretty    string
	WordCount int
	Share     string
}

// GeneratePodcast writes a dialogue of roughly Duration minutes. Long
// podcasts are written in independent parts of about 2500 words.
func (s *Service) GeneratePodcast(ctx context.Context, sid core.SessionID, req PodcastRequest) (*PodcastResult, error) {
	if err := core.ValidateScriptRequest(req.Topic, req.Duration); err != nil {
		return nil, err
	}
	style := req.Style
	if style == "" {
		style = core.PodcastStyles[0]
	}

	script, err := s.podcastScript(ctx, req.Topic, style, req.Duration, modelOr(req.Model, ai.DefaultModel))
	if err != nil {
		return nil, err
	}

	podcast := ScriptToDialogue(script, req.Topic, style)
	pretty := FormatDialogue(podcast)
	result := &PodcastResult{
		Script:    script,
		Podcast:   podcast,
		Pretty:    pretty,
		WordCount: chunker.Words(script),
	}
	result.Share = FormatPodcast(req.Topic, style, req.Duration, result.WordCount, pretty)

	s.saveShareText(ctx, sid, core.FeaturePodcast, result.Share)
	s.saveSpeechText(ctx, sid, core.FeaturePodcast, dialogueSpeech(podcast))
	return result, nil
}

func (s *Service) podcastScript(ctx context.Context, topic, style string, duration int, model string) (string, error) {
	parts := max(1, duration*wordsPerMinute/podcastPartWords)

	t := &Template[string]{
		Feature: core.FeaturePodcast,
		Call: func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:     model,
				Prompt:    podcastPrompt(part, topic, style),
				MaxTokens: podcastPartWords + podcastTokenMargin,
			})
		},
		Parse: func(part Part, raw string) (string, error) {
			return CleanScript(raw), nil
		},
		Progress: s.newProgress(core.FeaturePodcast),
		Logger:   s.logger,
	}

	scripts, err := t.RunParts(ctx, make([]string, parts))
	if err != nil {
		return "", err
	}
	full := strings.Join(scripts, "\n\n")
	return strings.Join(chunker.Chunk(full, podcastMaxLength), "\n\n"), nil
}

// CleanScript drops blank lines, collapses a doubled speaker prefix to the
// first one and gives unprefixed lines to the Host.
func CleanScript(raw string) string {
	var cleaned []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := speakerPrefix.FindStringSubmatchIndex(line)
		if m == nil {
			cleaned = append(cleaned, "Host: "+line)
			continue
		}
		speaker := "Host:"
		if strings.EqualFold(line[m[2]:m[3]], "guest:") {
			speaker = "Guest:"
		}
		cleaned = append(cleaned, strings.TrimSpace(speaker+" "+line[m[1]:]))
	}
	return strings.Join(cleaned, "\n")
}

// ScriptToDialogue splits a script at every "Host:" or "Guest:" marker.
// Text before the first marker and empty turns are dropped.
func ScriptToDialogue(script, topic, style string) core.PodcastScript {
	dialogue := []core.DialogueTurn{}
	markers := turnMarker.FindAllStringIndex(script, -1)
	for i, m := range markers {
		end := len(script)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		text := strings.Join(strings.Fields(script[m[1]:end]), " ")
		if text == "" {
			continue
		}
		dialogue = append(dialogue, core.DialogueTurn{
			Speaker: strings.TrimSuffix(script[m[0]:m[1]], ":"),
			Text:    text,
		})
	}
	return core.PodcastScript{Topic: topic, Style: style, Dialogue: dialogue}
}

// FormatDialogue renders one "Speaker: text" line per turn.
func FormatDialogue(script core.PodcastScript) string {
	lines := make([]string, len(script.Dialogue))
	for i, turn := range script.Dialogue {
		lines[i] = turn.Speaker + ": " + turn.Text
	}
	return strings.Join(lines, "\n")
}

// dialogueSpeech is the narration text of a podcast: every turn in order,
// speaker included, on one line.
func dialogueSpeech(script core.PodcastScript) string {
	turns := make([]string, len(script.Dialogue))
	for i, turn := range script.Dialogue {
		turns[i] = turn.Speaker + ": " + turn.Text
	}
	return strings.Join(turns, " ")
}
