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

package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/natiq"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxUploadSize bounds multipart request bodies.
const maxUploadSize = 512 << 20

// publishedDir is the work directory subfolder holding per-session files.
const publishedDir = "sessions"

// Server serves the web UI and the JSON API.
type Server struct {
	app             *natiq.App
	router          *gin.Engine
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.With("component", "server")
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
// Default: 30s
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// New creates a server for app.
func New(app *natiq.App, opts ...Option) (*Server, error) {
	if app == nil {
		return nil, errors.New("server: app is required")
	}
	s := &Server{
		app:             app,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.buildRouter(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) buildRouter() error {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(s.logger))
	router.Use(sessionMiddleware())
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.handleIndex)
	router.GET("/healthz", s.handleHealth)
	router.GET("/files/:name", s.handleFile)

	api := router.Group("/api")
	api.GET("/models", s.handleModels)
	api.POST("/diarize", s.handleDiarize)
	api.POST("/qa", s.handleQA)
	api.GET("/qa/history", s.handleQAHistory)
	api.POST("/summarize", s.handleSummarize)
	api.POST("/translate", s.handleTranslate)
	api.POST("/sentiment", s.handleSentiment)
	api.POST("/podcast", s.handlePodcast)
	api.POST("/video", s.handleVideo)
	api.POST("/speech", s.handleSpeech)
	api.POST("/share", s.handleShare)
	api.GET("/download/:feature", s.handleDownload)
	api.DELETE("/session", s.handleInvalidate)

	s.router = router
	return nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", fmt.Sprintf("http://%s", listener.Addr()))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Debug("received shutdown signal, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server shutdown completed")
	return nil
}
