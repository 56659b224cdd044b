package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
	"github.com/poiesic/natiq/pipeline"
	"github.com/poiesic/natiq/share"
)

type diarizeResponse struct {
	Transcript        string         `json:"transcript"`
	Segments          []core.Segment `json:"segments"`
	Share             string         `json:"share"`
	TranscribeSeconds float64        `json:"transcribe_seconds"`
	ProcessSeconds    float64        `json:"process_seconds"`
}

type qaResponse struct {
	Transcript   string        `json:"transcript"`
	Answer       string        `json:"answer"`
	History      []core.QAPair `json:"history"`
	Conversation string        `json:"conversation"`
	Share        string        `json:"share"`
}

type textResponse struct {
	Transcript string `json:"transcript"`
	Result     string `json:"result"`
	Share      string `json:"share"`
}

type sentimentResponse struct {
	Transcript string         `json:"transcript"`
	Sentiment  core.Sentiment `json:"sentiment"`
	Confidence string         `json:"confidence"`
	Share      string         `json:"share"`
}

type scriptRequest struct {
	Topic    string `json:"topic"`
	Style    string `json:"style"`
	Duration int    `json:"duration"`
	Model    string `json:"model"`
}

type podcastResponse struct {
	Script    string             `json:"script"`
	Podcast   core.PodcastScript `json:"podcast"`
	Pretty    string             `json:"pretty"`
	WordCount int                `json:"word_count"`
	Share     string             `json:"share"`
}

type videoResponse struct {
	Script    core.VideoScript `json:"script"`
	WordCount int              `json:"word_count"`
	Share     string           `json:"share"`
}

type speechRequest struct {
	Feature  string `json:"feature"`
	Language string `json:"language"`
}

type shareRequest struct {
	Feature   string   `json:"feature"`
	Channels  []string `json:"channels"`
	Recipient string   `json:"recipient"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Features":       core.Features,
		"Models":         ai.Models,
		"Languages":      core.TranscriptionLanguages,
		"Targets":        core.TargetLanguages,
		"PodcastStyles":  core.PodcastStyles,
		"VideoStyles":    core.VideoStyles,
		"Channels":       share.Channels,
		"MinDuration":    core.MinDuration,
		"MaxDuration":    core.MaxDuration,
		"DefaultModel":   ai.DefaultModel,
		"DialogueModel":  ai.DialogueModel,
		"DefaultFeature": core.FeatureDiarization,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": s.app.Runner().Running()})
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":   ai.Models,
		"default":  ai.DefaultModel,
		"dialogue": ai.DialogueModel,
	})
}

// source reads the transcript source of a multipart or urlencoded form.
// Typed text wins, so an upload sent alongside it is not stored.
func (s *Server) source(c *gin.Context) (pipeline.Source, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	src := pipeline.Source{
		Text:     c.PostForm("text"),
		URL:      strings.TrimSpace(c.PostForm("url")),
		Language: c.PostForm("language"),
	}
	if strings.TrimSpace(src.Text) != "" {
		return src, nil
	}

	file, header, err := c.Request.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		path, err := s.app.Acquirer().SaveUpload(c.Request.Context(), header.Filename, file)
		if err != nil {
			return src, err
		}
		src.File = path
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return src, err
	}
	return src, nil
}

// invoke runs fn on the worker pool for the request's session and writes
// its result as JSON.
func (s *Server) invoke(c *gin.Context, fn func(ctx context.Context, svc *pipeline.Service) (any, error)) {
	var out any
	err := s.app.Run(c.Request.Context(), sessionID(c), func(ctx context.Context, svc *pipeline.Service) error {
		var err error
		out, err = fn(ctx, svc)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDiarize(c *gin.Context) {
	src, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	req := pipeline.DiarizeRequest{Source: src, Model: c.PostForm("model")}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.Diarize(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return diarizeResponse{
			Transcript:        res.Transcript,
			Segments:          res.Segments,
			Share:             res.Share,
			TranscribeSeconds: res.TranscribeTime.Seconds(),
			ProcessSeconds:    res.ProcessTime.Seconds(),
		}, nil
	})
}

func (s *Server) handleQA(c *gin.Context) {
	src, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	req := pipeline.QARequest{Source: src, Question: c.PostForm("question"), Model: c.PostForm("model")}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.Ask(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return qaResponse{
			Transcript:   res.Transcript,
			Answer:       res.Answer,
			History:      res.History,
			Conversation: pipeline.FormatConversation(res.History),
			Share:        res.Share,
		}, nil
	})
}

func (s *Server) handleQAHistory(c *gin.Context) {
	history, err := s.app.Service().QAHistory(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history":      history,
		"conversation": pipeline.FormatConversation(history),
	})
}

func (s *Server) handleSummarize(c *gin.Context) {
	src, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	req := pipeline.SummarizeRequest{
		Source:   src,
		Language: c.PostForm("summary_language"),
		Mode:     pipeline.Mode(c.PostForm("mode")),
		Model:    c.PostForm("model"),
	}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.Summarize(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return textResponse{Transcript: res.Transcript, Result: res.Summary, Share: res.Share}, nil
	})
}

func (s *Server) handleTranslate(c *gin.Context) {
	src, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	req := pipeline.TranslateRequest{
		Source: src,
		Target: c.DefaultPostForm("target", "en"),
		Mode:   pipeline.Mode(c.PostForm("mode")),
		Model:  c.PostForm("model"),
	}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.Translate(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return textResponse{Transcript: res.Transcript, Result: res.Translation, Share: res.Share}, nil
	})
}

func (s *Server) handleSentiment(c *gin.Context) {
	src, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	req := pipeline.SentimentRequest{Source: src, Model: c.PostForm("model")}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.AnalyzeSentiment(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return sentimentResponse{
			Transcript: res.Transcript,
			Sentiment:  res.Sentiment,
			Confidence: pipeline.Percent(res.Sentiment.Score),
			Share:      res.Share,
		}, nil
	})
}

func (s *Server) handlePodcast(c *gin.Context) {
	var body scriptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", core.ErrMissingInput, err))
		return
	}
	req := pipeline.PodcastRequest{Topic: body.Topic, Style: body.Style, Duration: body.Duration, Model: body.Model}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.GeneratePodcast(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return podcastResponse{
			Script:    res.Script,
			Podcast:   res.Podcast,
			Pretty:    res.Pretty,
			WordCount: res.WordCount,
			Share:     res.Share,
		}, nil
	})
}

func (s *Server) handleVideo(c *gin.Context) {
	var body scriptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", core.ErrMissingInput, err))
		return
	}
	req := pipeline.VideoRequest{Topic: body.Topic, Style: body.Style, Duration: body.Duration, Model: body.Model}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		res, err := svc.GenerateVideoScript(ctx, sessionID(c), req)
		if err != nil {
			return nil, err
		}
		return videoResponse{Script: res.Script, WordCount: res.WordCount, Share: res.Share}, nil
	})
}

func (s *Server) handleSpeech(c *gin.Context) {
	var body speechRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", core.ErrMissingInput, err))
		return
	}
	feature, err := core.ParseFeature(body.Feature)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.invoke(c, func(ctx context.Context, svc *pipeline.Service) (any, error) {
		sid := sessionID(c)
		path, err := svc.Speech(ctx, sid, feature, body.Language)
		if err != nil {
			return nil, err
		}
		name, err := s.publish(sid, path)
		if err != nil {
			return nil, err
		}
		return gin.H{"audio": "/files/" + name}, nil
	})
}

func (s *Server) handleShare(c *gin.Context) {
	var body shareRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", core.ErrMissingInput, err))
		return
	}
	feature, err := core.ParseFeature(body.Feature)
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(body.Channels) == 0 {
		s.fail(c, fmt.Errorf("%w: choose at least one channel", core.ErrMissingInput))
		return
	}
	channels := make([]share.Channel, 0, len(body.Channels))
	for _, name := range body.Channels {
		channel, err := share.ParseChannel(name)
		if err != nil {
			s.fail(c, err)
			return
		}
		channels = append(channels, channel)
	}

	reports, err := s.app.Share(c.Request.Context(), sessionID(c), feature, body.Recipient, channels...)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// handleDownload returns the session's last share text of a feature as a
// txt, pdf or docx attachment.
func (s *Server) handleDownload(c *gin.Context) {
	feature, err := core.ParseFeature(c.Param("feature"))
	if err != nil {
		s.fail(c, err)
		return
	}
	text, err := s.app.Service().ShareText(c.Request.Context(), sessionID(c), feature)
	if err != nil {
		s.fail(c, err)
		return
	}
	title := pipeline.ShareTitle(feature)

	format := strings.ToLower(c.DefaultQuery("format", "txt"))
	if format == "txt" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", share.DocumentName(title, "txt")))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
		return
	}
	docFormat, err := share.ParseFormat(format)
	if err != nil {
		s.fail(c, err)
		return
	}
	path, err := share.Render(docFormat, title, text, s.app.Config().WorkDir)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) handleInvalidate(c *gin.Context) {
	var feature core.Feature
	if name := c.Query("feature"); name != "" {
		f, err := core.ParseFeature(name)
		if err != nil {
			s.fail(c, err)
			return
		}
		feature = f
	}
	if err := s.app.Service().Invalidate(c.Request.Context(), sessionID(c), feature); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleFile serves a file published to the caller's session.
func (s *Server) handleFile(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == string(filepath.Separator) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}
	path := filepath.Join(s.sessionDir(sessionID(c)), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}
	c.File(path)
}

// sessionDir holds the files a session may fetch through /files.
func (s *Server) sessionDir(sid core.SessionID) string {
	return filepath.Join(s.app.Config().WorkDir, publishedDir, string(sid))
}

// publish moves a generated file into the session's directory and returns
// its name there.
func (s *Server) publish(sid core.SessionID, path string) (string, error) {
	dir := s.sessionDir(sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	name := filepath.Base(path)
	if err := os.Rename(path, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to publish %s: %w", name, err)
	}
	return name, nil
}
