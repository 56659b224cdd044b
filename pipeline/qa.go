package pipeline

import (
	"context"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
)

const (
	qaMaxLength = 2500
	qaMaxTokens = 500

	answerNotFoundMarker = "Answer not found"

	// NoAnswerMessage is returned when no chunk contained the answer.
	NoAnswerMessage = "❌ Answer not found in transcript."

	// NoQuestionMessage is returned when the question or context is blank.
	NoQuestionMessage = "⚠️ No question or context provided."
)

// QARequest asks one question about a transcript.
type QARequest struct {
	Source   Source
	Question string
	Model    string
}

// QAResult holds the merged answer and the session's updated history.
type QAResult struct {
	Transcript string
	Answer     string
	History    []core.QAPair
	Share      string
}

// Ask answers a question from the transcript and appends the pair to the
// session's history.
func (s *Service) Ask(ctx context.Context, sid core.SessionID, req QARequest) (*QAResult, error) {
	if err := core.ValidateQuestion(req.Question); err != nil {
		return nil, err
	}
	transcript, _, err := s.transcript(ctx, sid, core.FeatureQA, req.Source)
	if err != nil {
		return nil, err
	}

	answer, err := s.answer(ctx, req.Question, transcript, modelOr(req.Model, ai.DialogueModel))
	if err != nil {
		return nil, err
	}

	pair := core.QAPair{Question: req.Question, Answer: answer}
	history := []core.QAPair{pair}
	if s.store != nil {
		if err := s.store.AppendQA(ctx, sid, pair); err != nil {
			s.logger.Warn("failed to record Q&A history", "err", err)
		}
		if stored, err := s.store.QAHistory(ctx, sid); err == nil && len(stored) > 0 {
			history = stored
		}
	}

	result := &QAResult{
		Transcript: transcript,
		Answer:     answer,
		History:    history,
		Share:      FormatQAHistory(history),
	}
	s.saveShareText(ctx, sid, core.FeatureQA, result.Share)
	return result, nil
}

func (s *Service) answer(ctx context.Context, question, passage string, model string) (string, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(passage) == "" {
		return NoQuestionMessage, nil
	}

	t := &Template[string]{
		Feature:   core.FeatureQA,
		MaxLength: qaMaxLength,
		Call: func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:       model,
				Prompt:      qaPrompt(part, question),
				MaxTokens:   qaMaxTokens,
				Temperature: ai.Temperature(0.2),
			})
		},
		Progress: s.newProgress(core.FeatureQA),
		Logger:   s.logger,
	}

	answers, err := t.Run(ctx, passage)
	if err != nil {
		return "", err
	}
	return mergeAnswers(answers), nil
}

// mergeAnswers drops chunk answers that report nothing found and joins the rest.
func mergeAnswers(answers []string) string {
	var kept []string
	for _, a := range answers {
		if !strings.Contains(a, answerNotFoundMarker) {
			kept = append(kept, a)
		}
	}
	merged := strings.Join(kept, "\n\n")
	if merged == "" {
		return NoAnswerMessage
	}
	return merged
}
