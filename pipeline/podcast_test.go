package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/natiq/ai"
	"github.com/poiesic/natiq/ai/mock"
	"github.com/poiesic/natiq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanScript(t *testing.T) {
	raw := `
Host: Welcome to the show!

guest: Thanks for having me.
Host: Host: Doubled prefix here.
GUEST:Guest: shouting twice
Just a narrator line.
`
	want := strings.Join([]string{
		"Host: Welcome to the show!",
		"Guest: Thanks for having me.",
		"Host: Doubled prefix here.",
		"Guest: shouting twice",
		"Host: Just a narrator line.",
	}, "\n")
	assert.Equal(t, want, CleanScript(raw))
}

func TestScriptToDialogue(t *testing.T) {
	script := "intro noise Host: Hello there. Guest: Hi!  How are\n\nyou? Host: Fine. Guest:"
	podcast := ScriptToDialogue(script, "Go", "fun")

	assert.Equal(t, "Go", podcast.Topic)
	assert.Equal(t, "fun", podcast.Style)
	assert.Equal(t, []core.DialogueTurn{
		{Speaker: "Host", Text: "Hello there."},
		{Speaker: "Guest", Text: "Hi! How are you?"},
		{Speaker: "Host", Text: "Fine."},
	}, podcast.Dialogue)

	assert.Equal(t, "Host: Hello there.\nGuest: Hi! How are you?\nHost: Fine.", FormatDialogue(podcast))
	assert.Equal(t, "Host: Hello there. Guest: Hi! How are you? Host: Fine.", dialogueSpeech(podcast))
}

func TestScriptToDialogue_NoMarkers(t *testing.T) {
	podcast := ScriptToDialogue("nothing to see", "t", "s")
	assert.NotNil(t, podcast.Dialogue)
	assert.Empty(t, podcast.Dialogue)
}

func TestGeneratePodcast_PartCount(t *testing.T) {
	tests := []struct {
		duration int
		parts    int
	}{
		{1, 1},
		{16, 1},
		{17, 1},
		{34, 2},
		{60, 3},
	}
	for _, tt := range tests {
		gen := mock.NewMockGenerator().WithResponses("Host: Hi\nGuest: Hello")
		svc := newTestService(t, gen)

		_, err := svc.GeneratePodcast(context.Background(), "s", PodcastRequest{Topic: "Go", Style: "fun", Duration: tt.duration})
		require.NoError(t, err)
		assert.Equal(t, tt.parts, gen.CallCount(), "duration %d", tt.duration)
	}
}

func TestGeneratePodcast(t *testing.T) {
	gen := mock.NewMockGenerator().WithResponses("Host: Welcome.\nGuest: Glad to be here.\nwe talk about Go")
	svc := newTestService(t, gen)

	res, err := svc.GeneratePodcast(context.Background(), "s1", PodcastRequest{Topic: "Go", Style: "fun", Duration: 5})
	require.NoError(t, err)

	// Re-chunking joins lines with spaces.
	assert.Equal(t, "Host: Welcome. Guest: Glad to be here. Host: we talk about Go", res.Script)
	assert.Len(t, res.Podcast.Dialogue, 3)
	assert.Equal(t, 12, res.WordCount)
	assert.Contains(t, res.Share, "🎙️ New Podcast Script Generated!")
	assert.Contains(t, res.Share, "⏱️ Duration: 5 min (approx.)")
	assert.True(t, strings.HasSuffix(res.Share, res.Pretty))

	req := gen.Requests()[0]
	assert.Equal(t, ai.DefaultModel, req.Model)
	assert.Equal(t, 2700, req.MaxTokens)
	assert.Nil(t, req.Temperature)
	assert.True(t, strings.HasPrefix(req.Prompt, "Podcast script part 1/1.\n\nWrite a fun podcast dialogue between a Host and a Guest on the topic: Go."))
	assert.Contains(t, req.Prompt, "Do NOT summarize previous parts; continue fresh dialogue.")
}

func TestGeneratePodcast_Validation(t *testing.T) {
	svc := newTestService(t, mock.NewMockGenerator())

	_, err := svc.GeneratePodcast(context.Background(), "s", PodcastRequest{Topic: " ", Duration: 5})
	assert.ErrorIs(t, err, core.ErrEmptyTopic)

	_, err = svc.GeneratePodcast(context.Background(), "s", PodcastRequest{Topic: "Go", Duration: 0})
	assert.ErrorIs(t, err, core.ErrInvalidDuration)
}

func TestVideoWordBudget(t *testing.T) {
	intro, body, conclusion := videoWordBudget(5)
	assert.Equal(t, 112, intro)
	assert.Equal(t, 525, body)
	assert.Equal(t, 113, conclusion)

	intro, body, conclusion = videoWordBudget(1)
	assert.Equal(t, 22, intro)
	assert.Equal(t, 105, body)
	assert.Equal(t, 23, conclusion)
}

func TestGenerateVideoScript(t *testing.T) {
	gen := mock.NewMockGenerator().WithGenerateFunc(func(ctx context.Context, req ai.GenerateRequest) (string, error) {
		switch {
		case strings.HasPrefix(req.Prompt, "Write an engaging introduction"):
			return "INTRO", nil
		case strings.HasPrefix(req.Prompt, "Write a clear conclusion"):
			return "OUTRO", nil
		default:
			return "BODY", nil
		}
	})
	svc := newTestService(t, gen)

	res, err := svc.GenerateVideoScript(context.Background(), "s1", VideoRequest{Topic: "Go", Style: "fun", Duration: 5})
	require.NoError(t, err)

	script := res.Script
	assert.Equal(t, "Go", script.Title)
	assert.Equal(t, 5, script.DurationMinutes)
	assert.Equal(t, "BODY BODY", script.Sections.Body)
	assert.Equal(t, "INTRO\n\nBODY BODY\n\nOUTRO", script.Narration)
	assert.Equal(t, []string{"INTRO BODY BODY OUTRO"}, script.Chunks)
	assert.Equal(t, 4, res.WordCount)

	reqs := gen.Requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, "Write an engaging introduction for a fun video script about Go. Limit to 112 words.", reqs[0].Prompt)
	assert.Equal(t, 212, reqs[0].MaxTokens)
	assert.Equal(t, "Write part 1 of a fun video script about Go. This should be a sequential narrative continuing the topic. Limit to 400 words.", reqs[1].Prompt)
	assert.Equal(t, 500, reqs[1].MaxTokens)
	assert.True(t, strings.HasPrefix(reqs[2].Prompt, "Write part 2 of"))
	assert.Equal(t, "Write a clear conclusion for a fun video script about Go. Limit to 113 words.", reqs[3].Prompt)
	assert.Equal(t, 213, reqs[3].MaxTokens)
}
