package pipeline

import (
	"errors"
	"fmt"

	"github.com/poiesic/natiq/core"
)

// Stage names one step of a feature invocation.
type Stage string

const (
	StageAcquire    Stage = "acquire"
	StageTranscribe Stage = "transcribe"
	StageChunk      Stage = "chunk"
	StageProcess    Stage = "process"
	StageAggregate  Stage = "aggregate"
	StageFormat     Stage = "format"
)

var (
	// ErrGeneratorRequired indicates the service was built without a text generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrPipelinesRequired indicates the service was built without local pipelines.
	ErrPipelinesRequired = errors.New("local pipelines are required")

	// ErrNoSpeechText indicates speech was requested before any script was generated.
	ErrNoSpeechText = errors.New("generate a script first")

	// ErrRunnerClosed indicates work was submitted to a released runner.
	ErrRunnerClosed = errors.New("runner is closed")
)

// StageError reports the stage at which a feature invocation failed.
// The wrapped error's text is kept unchanged so upstream status codes and
// bodies reach the user.
type StageError struct {
	Stage   Stage
	Feature core.Feature
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Feature, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(feature core.Feature, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Feature: feature, Err: err}
}
