package pipeline

import (
	"context"
	"strings"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/core"
)

const (
	sentimentMaxLength = 2000
	sentimentMaxTokens = 300

	labelNeutral = "NEUTRAL"
)

// SentimentRequest asks for the sentiment of a text or transcript.
type SentimentRequest struct {
	Source Source
	Model  string
}

// SentimentResult holds the aggregated sentiment.
type SentimentResult struct {
	Transcript string
	Sentiment  core.Sentiment
	Share      string
}

// AnalyzeSentiment labels the sentiment of the source text.
func (s *Service) AnalyzeSentiment(ctx context.Context, sid core.SessionID, req SentimentRequest) (*SentimentResult, error) {
	text, _, err := s.transcript(ctx, sid, core.FeatureSentiment, req.Source)
	if err != nil {
		return nil, err
	}

	sentiment, err := s.sentiment(ctx, text, modelOr(req.Model, ai.DefaultModel))
	if err != nil {
		return nil, err
	}

	result := &SentimentResult{
		Transcript: text,
		Sentiment:  sentiment,
		Share:      FormatSentiment(sentiment),
	}
	s.saveShareText(ctx, sid, core.FeatureSentiment, result.Share)
	return result, nil
}

func (s *Service) sentiment(ctx context.Context, text, model string) (core.Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return core.Sentiment{Label: labelNeutral, Score: 0, Explanation: "No input text provided."}, nil
	}

	t := &Template[core.Sentiment]{
		Feature:   core.FeatureSentiment,
		MaxLength: sentimentMaxLength,
		Tolerant:  true,
		Call: func(ctx context.Context, part Part) (string, error) {
			return s.generator.Generate(ctx, ai.GenerateRequest{
				Model:       model,
				Prompt:      sentimentPrompt(part),
				MaxTokens:   sentimentMaxTokens,
				Temperature: ai.Temperature(0.2),
			})
		},
		Parse: func(part Part, raw string) (core.Sentiment, error) {
			return decodeJSON[core.Sentiment](raw)
		},
		Fallback: func(part Part, raw string) core.Sentiment {
			return core.Sentiment{Label: labelNeutral, Score: 0, Explanation: raw}
		},
		Progress: s.newProgress(core.FeatureSentiment),
		Logger:   s.logger,
	}

	results, err := t.Run(ctx, text)
	if err != nil {
		return core.Sentiment{}, err
	}
	return aggregateSentiment(results), nil
}

// aggregateSentiment returns a single result unchanged. Several results
// combine into the mean score, the most frequent upper-cased label (the
// first seen wins a tie) and all explanations separated by blank lines.
func aggregateSentiment(results []core.Sentiment) core.Sentiment {
	switch len(results) {
	case 0:
		return core.Sentiment{Label: labelNeutral}
	case 1:
		return results[0]
	}

	var (
		total        float64
		explanations = make([]string, 0, len(results))
		counts       = map[string]int{}
		order        []string
	)
	for _, r := range results {
		total += r.Score
		explanations = append(explanations, r.Explanation)

		label := strings.ToUpper(r.Label)
		if label == "" {
			label = labelNeutral
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	majority := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[majority] {
			majority = label
		}
	}

	return core.Sentiment{
		Label:       majority,
		Score:       total / float64(len(results)),
		Explanation: strings.Join(explanations, "\n\n"),
	}
}
