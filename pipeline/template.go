package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/natiq/chunker"
	"github.com/poiesic/natiq/core"
)

// Part is one chunk of a feature's input with its 1-based position.
type Part struct {
	Index int
	Total int
	Text  string
}

// Template is the per-chunk processing skeleton shared by every feature.
//
// Chunks are processed strictly in order, one at a time. A Call error
// aborts the run. A Parse error aborts a strict template and is replaced by
// Fallback in a tolerant one.
type Template[R any] struct {
	Feature   core.Feature
	MaxLength int
	Tolerant  bool

	// Call invokes the external processor for one part.
	Call func(ctx context.Context, part Part) (string, error)

	// Parse interprets the processor output. Nil keeps raw output as is,
	// which requires R to be string.
	Parse func(part Part, raw string) (R, error)

	// Fallback builds the degraded result of a tolerant template.
	Fallback func(part Part, raw string) R

	Progress Progress
	Logger   *slog.Logger
}

// Run chunks text and processes every chunk.
func (t *Template[R]) Run(ctx context.Context, text string) ([]R, error) {
	return t.RunParts(ctx, chunker.Chunk(text, t.MaxLength))
}

// RunParts processes pre-built chunks. Generators that have no input text
// pass one empty chunk per part they want to produce.
func (t *Template[R]) RunParts(ctx context.Context, chunks []string) ([]R, error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress := t.Progress
	if progress == nil {
		progress = noProgress{}
	}

	results := make([]R, 0, len(chunks))
	progress.Start(len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, stageError(t.Feature, StageProcess, err)
		}
		part := Part{Index: i + 1, Total: len(chunks), Text: chunk}

		raw, err := t.Call(ctx, part)
		if err != nil {
			return nil, stageError(t.Feature, StageProcess, err)
		}

		result, err := t.parse(part, raw)
		if err != nil {
			if !t.Tolerant || t.Fallback == nil {
				return nil, stageError(t.Feature, StageProcess,
					fmt.Errorf("%w: part %d/%d: %w", core.ErrMalformedOutput, part.Index, part.Total, err))
			}
			logger.Warn("unparsable output, keeping raw text", "feature", t.Feature, "part", part.Index, "err", err)
			result = t.Fallback(part, raw)
		}
		results = append(results, result)
		progress.Increment(1)
	}
	progress.Finish()
	return results, nil
}

func (t *Template[R]) parse(part Part, raw string) (R, error) {
	if t.Parse != nil {
		return t.Parse(part, raw)
	}
	var zero R
	s, ok := any(raw).(R)
	if !ok {
		return zero, fmt.Errorf("%s: no parser for %T", t.Feature, zero)
	}
	return s, nil
}
