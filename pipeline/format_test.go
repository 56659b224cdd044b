package pipeline

import (
	"strings"
	"testing"

	"github.com/poiesic/natiq/core"
	"github.com/stretchr/testify/assert"
)

func TestFormatSegments(t *testing.T) {
	out := FormatSegments([]core.Segment{
		{Speaker: "Speaker 1", Text: "Hello"},
		{Text: "Who am I?"},
	})
	assert.Equal(t, "👤 Speaker 1\nHello\n\n👤 Unknown\nWho am I?", out)
}

func TestFormatQAHistory(t *testing.T) {
	history := []core.QAPair{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}}
	assert.Equal(t,
		"📚 Q&A Session Log:\n\n❓ Question1: q1\n✅ Answer1: a1\n\n❓ Question2: q2\n✅ Answer2: a2",
		FormatQAHistory(history))
	assert.Equal(t, "Q1: q1\nA1: a1\n\nQ2: q2\nA2: a2", FormatConversation(history))
	assert.Equal(t, "📚 Q&A Session Log:", FormatQAHistory(nil))
}

func TestFormatSummaryAndTranslation(t *testing.T) {
	long := strings.Repeat("ع", 2500)

	summary := FormatSummary(long, "- point")
	assert.True(t, strings.HasPrefix(summary, "📝 Transcript & Summary\n\n---\n\n📜 Transcript:\n"))
	assert.Contains(t, summary, strings.Repeat("ع", 2000)+"...\n\n📌 Summary:\n- point")
	assert.NotContains(t, summary, strings.Repeat("ع", 2001))

	translation := FormatTranslation("short", "قصير")
	assert.Equal(t, "🌍 Translation Output\n\n📜 Transcript:\nshort...\n\n🌍 Translation:\nقصير", translation)
}

func TestFormatSentiment(t *testing.T) {
	out := FormatSentiment(core.Sentiment{Label: "POSITIVE", Score: 0.7, Explanation: "upbeat"})
	assert.Equal(t, "💭 Sentiment Analysis Result\n-----------------------------------\nSentiment: POSITIVE\nConfidence: 70.0%\nExplanation: \nupbeat", out)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "70.0", Percent(0.7))
	assert.Equal(t, "83.33", Percent(0.83333))
	assert.Equal(t, "0.0", Percent(0))
	assert.Equal(t, "100.0", Percent(1))
}

func TestFormatPodcastAndVideo(t *testing.T) {
	podcast := FormatPodcast("Go", "fun", 5, 42, "Host: hi\nGuest: hello")
	assert.Equal(t, "🎙️ New Podcast Script Generated!\n\n📝 Topic: Go\n\n🎨 Style: fun\n\n⏱️ Duration: 5 min (approx.)\n\n📊 Word Count: 42\n\nHost: hi\nGuest: hello", podcast)

	video := FormatVideo("Go", "educational", 3, 10, []string{"part one", "part two"})
	assert.True(t, strings.HasPrefix(video, "🎬 New Video Script Generated!\n\n📝 Topic: Go"))
	assert.True(t, strings.HasSuffix(video, "📊 Word Count: 10\n\npart one\npart two"))
}
