package pipeline

import (
	"encoding/json"
	"strings"
)

// decodeJSON decodes a model's JSON answer. Markdown code fences around the
// payload are removed first, and on failure keys missing their opening
// quote are repaired and decoding is retried once.
func decodeJSON[T any](raw string) (T, error) {
	var v T
	payload := stripFences(raw)
	err := json.Unmarshal([]byte(payload), &v)
	if err == nil {
		return v, nil
	}
	repaired := repairJSON(payload)
	if repaired == payload {
		return v, err
	}
	var retry T
	if json.Unmarshal([]byte(repaired), &retry) != nil {
		return v, err
	}
	return retry, nil
}

// stripFences removes a surrounding ```json ... ``` block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// repairJSON inserts the opening quote of object keys written as
// `, speaker": ...` or `{text": ...`.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	for i := 0; i < len(in); {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && isSpace(in[i]) {
			out = append(out, in[i])
			i++
		}
		start := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_') {
			i++
		}
		if i > start && i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[start:i]...)
	}
	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
