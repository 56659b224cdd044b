package pipeline

import (
	"fmt"
	"strings"
)

func diarizationPrompt(part Part) string {
	return fmt.Sprintf(`You are a diarization assistant.
Split the following conversation into speaker turns.
Assign speaker labels (Speaker 1, Speaker 2, etc.) consistently.

Transcript (part %d/%d):
%s

Return the result as JSON list of objects with keys: "speaker", "text".`, part.Index, part.Total, part.Text)
}

func qaPrompt(part Part, question string) string {
	return fmt.Sprintf(`You are a Question Answering assistant.
Answer the question strictly based on the given context.
If the answer is not in the context, reply with: "Answer not found in context."

Context (part %d/%d):
%s

Question:
%s`, part.Index, part.Total, part.Text, question)
}

func sentimentPrompt(part Part) string {
	return fmt.Sprintf(`Analyze the sentiment of the following text (English or Arabic).
Respond in JSON with keys: label (POSITIVE, NEGATIVE, NEUTRAL), score (0-1), and explanation.

Text (part %d/%d):
%s`, part.Index, part.Total, part.Text)
}

func summarySystemPrompt(lang string) string {
	return fmt.Sprintf("You are a helpful assistant that summarizes %s text into clear bullet points.", strings.ToUpper(lang))
}

func summaryPrompt(part Part) string {
	return "Summarize this:\n\n" + part.Text
}

func translationSystemPrompt(target string) string {
	return fmt.Sprintf("You are a professional translator. Translate to %s with good formatting.", strings.ToUpper(target))
}

func podcastPrompt(part Part, topic, style string) string {
	return fmt.Sprintf("Podcast script part %d/%d.\n\n"+
		"Write a %s podcast dialogue between a Host and a Guest on the topic: %s. "+
		"Ensure alternating 'Host:' and 'Guest:' turns. "+
		"Make it natural and engaging. "+
		"Approx. %d words in this part. "+
		"Do NOT summarize previous parts; continue fresh dialogue.",
		part.Index, part.Total, style, topic, podcastPartWords)
}

func videoIntroPrompt(topic, style string, words int) string {
	return fmt.Sprintf("Write an engaging introduction for a %s video script about %s. Limit to %d words.", style, topic, words)
}

func videoBodyPrompt(part Part, topic, style string) string {
	return fmt.Sprintf("Write part %d of a %s video script about %s. "+
		"This should be a sequential narrative continuing the topic. "+
		"Limit to %d words.", part.Index, style, topic, videoBodyPartWords)
}

func videoConclusionPrompt(topic, style string, words int) string {
	return fmt.Sprintf("Write a clear conclusion for a %s video script about %s. Limit to %d words.", style, topic, words)
}
