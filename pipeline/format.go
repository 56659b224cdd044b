package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/natiq/core"
)

const sharePreviewLength = 2000

// FormatSegments renders speaker turns as "👤 speaker" blocks.
func FormatSegments(segments []core.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		fmt.Fprintf(&b, "👤 %s\n%s\n\n", speaker, seg.Text)
	}
	return strings.TrimSpace(b.String())
}

// FormatQAHistory renders the session's Q&A log for sharing.
func FormatQAHistory(history []core.QAPair) string {
	var b strings.Builder
	b.WriteString("📚 Q&A Session Log:\n\n")
	for i, pair := range history {
		fmt.Fprintf(&b, "❓ Question%d: %s\n✅ Answer%d: %s\n\n", i+1, pair.Question, i+1, pair.Answer)
	}
	return strings.TrimSpace(b.String())
}

// FormatConversation renders the Q&A history as a plain conversation.
func FormatConversation(history []core.QAPair) string {
	var b strings.Builder
	for i, pair := range history {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, pair.Question, i+1, pair.Answer)
	}
	return strings.TrimSpace(b.String())
}

// FormatSummary renders a transcript preview and its summary.
func FormatSummary(transcript, summary string) string {
	return "📝 Transcript & Summary\n\n---\n\n" +
		"📜 Transcript:\n" + preview(transcript) + "...\n\n" +
		"📌 Summary:\n" + summary
}

// FormatTranslation renders a transcript preview and its translation.
func FormatTranslation(transcript, translation string) string {
	return "🌍 Translation Output\n\n" +
		"📜 Transcript:\n" + preview(transcript) + "...\n\n" +
		"🌍 Translation:\n" + translation
}

// FormatSentiment renders a sentiment with its confidence as a percentage.
func FormatSentiment(s core.Sentiment) string {
	return "💭 Sentiment Analysis Result\n" +
		"-----------------------------------\n" +
		"Sentiment: " + s.Label + "\n" +
		"Confidence: " + Percent(s.Score) + "%\n" +
		"Explanation: \n" +
		preview(s.Explanation)
}

// FormatPodcast renders the podcast notification.
func FormatPodcast(topic, style string, duration, words int, dialogue string) string {
	return strings.Join([]string{
		"🎙️ New Podcast Script Generated!",
		"📝 Topic: " + topic,
		"🎨 Style: " + style,
		fmt.Sprintf("⏱️ Duration: %d min (approx.)", duration),
		fmt.Sprintf("📊 Word Count: %d", words),
		dialogue,
	}, "\n\n")
}

// FormatVideo renders the video script notification.
func FormatVideo(topic, style string, duration, words int, chunks []string) string {
	return strings.Join([]string{
		"🎬 New Video Script Generated!",
		"📝 Topic: " + topic,
		"🎨 Style: " + style,
		fmt.Sprintf("⏱️ Duration: %d min (approx.)", duration),
		fmt.Sprintf("📊 Word Count: %d", words),
		strings.Join(chunks, "\n"),
	}, "\n\n")
}

// Percent renders a 0..1 score as a percentage rounded to two decimals,
// always with at least one decimal ("70.0", "83.33").
func Percent(score float64) string {
	v := math.Round(score*100*100) / 100
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// preview cuts text to its first 2000 characters.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= sharePreviewLength {
		return text
	}
	return string(runes[:sharePreviewLength])
}

var shareTitles = map[core.Feature]string{
	core.FeatureDiarization: "Diarization Result",
	core.FeaturePodcast:     "Podcast Script Notification",
	core.FeatureVideo:       "Video Script Notification",
	core.FeatureQA:          "Q&A Session",
	core.FeatureSummarize:   "Transcript & Summary",
	core.FeatureTranslate:   "Transcript & Translation",
	core.FeatureSentiment:   "Sentiment Analysis Result",
}

// ShareTitle is the message title used when sharing a feature's output.
func ShareTitle(feature core.Feature) string {
	if title, ok := shareTitles[feature]; ok {
		return title
	}
	return "Output"
}
