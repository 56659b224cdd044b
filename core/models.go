package core

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a content-derived identifier used as a cache key for media sources.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromReader hashes everything readable from r.
// Used to fingerprint uploaded media without holding it in memory.
func IDFromReader(r io.Reader) (ID, error) {
	h, _ := blake2b.New(8, nil)
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}
	return ID(binary.LittleEndian.Uint64(h.Sum(nil))), nil
}

// String renders the ID as fixed-width hex.
func (id ID) String() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return hex.EncodeToString(buf[:])
}

// SessionID identifies one user session of the web UI or one CLI run.
type SessionID string

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Feature names a pipeline instantiation.
type Feature string

const (
	FeatureDiarization Feature = "diarization"
	FeaturePodcast     Feature = "podcast"
	FeatureVideo       Feature = "video"
	FeatureQA          Feature = "qa"
	FeatureSummarize   Feature = "summarize"
	FeatureTranslate   Feature = "translate"
	FeatureSentiment   Feature = "sentiment"
)

// Features lists every feature in the order the UI presents them.
var Features = []Feature{
	FeatureDiarization,
	FeaturePodcast,
	FeatureVideo,
	FeatureQA,
	FeatureSummarize,
	FeatureTranslate,
	FeatureSentiment,
}

// Segment is one speaker turn produced by diarization.
type Segment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Sentiment is the label/score/explanation triple produced per chunk and
// after aggregation.
type Sentiment struct {
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// QAPair is one question and its merged answer.
type QAPair struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// DialogueTurn is one Host or Guest line of a podcast script.
type DialogueTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// PodcastScript is the structured form of a generated podcast dialogue.
type PodcastScript struct {
	Topic    string         `json:"topic"`
	Style    string         `json:"style"`
	Dialogue []DialogueTurn `json:"dialogue"`
}

// VideoSections holds the three generated parts of a video script.
type VideoSections struct {
	Intro      string `json:"intro"`
	Body       string `json:"body"`
	Conclusion string `json:"conclusion"`
}

// VideoScript is the structured form of a generated video script.
type VideoScript struct {
	Title           string        `json:"title"`
	Style           string        `json:"style"`
	DurationMinutes int           `json:"duration_minutes"`
	Sections        VideoSections `json:"sections"`
	Narration       string        `json:"narration"`
	Chunks          []string      `json:"chunks"`
}
