// Package chunker splits long text into word-aligned pieces small enough for
// a single remote or local model call.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Chunk splits text into whitespace-delimited tokens and greedily packs them
// into chunks of at most maxLength characters.
//
// Lengths are counted in characters (runes), not bytes. Every token is
// accounted as its length plus one, including the first token of a
// chunk, so boundaries are reproducible across call sites. A token that is
// longer than maxLength on its own is never split; it becomes its own
// oversized chunk. Empty or all-whitespace text yields no chunks, and no
// returned chunk is ever empty.
func Chunk(text string, maxLength int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		chunks  []string
		current []string
		length  int
	)
	for _, word := range words {
		n := utf8.RuneCountInString(word) + 1
		length += n
		if length > maxLength {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
			}
			current = []string{word}
			length = n
			continue
		}
		current = append(current, word)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// Words returns the number of whitespace-delimited words in text.
func Words(text string) int {
	return len(strings.Fields(text))
}
