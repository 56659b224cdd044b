package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/media"
	"github.com/poiesic/natiq/pipeline"
	"github.com/poiesic/natiq/share"
	"github.com/poiesic/natiq/storage"
)

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// statusFor maps an invocation error to an HTTP status. Input errors are
// the caller's fault, stage errors are upstream failures.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	var stageErr *pipeline.StageError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrMissingInput),
		errors.Is(err, core.ErrInvalidDuration),
		errors.Is(err, core.ErrInvalidLanguage),
		errors.Is(err, core.ErrInvalidMode),
		errors.Is(err, core.ErrUnknownFeature),
		errors.Is(err, share.ErrUnknownChannel),
		errors.Is(err, share.ErrUnknownFormat),
		errors.Is(err, media.ErrFileNotFound):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoSpeechText),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrRunnerClosed),
		errors.Is(err, storage.ErrStorageClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &stageErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		resp.Stage = string(stageErr.Stage)
	}
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.AbortWithStatusJSON(status, resp)
}
