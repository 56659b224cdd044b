package ai

// Models offered in the model selector. The first entry is the default.
var Models = []string{
	"mistralai/mistral-7b-instruct",
	"meta-llama/llama-3-8b-instruct",
	"anthropic/claude-3-sonnet",
	"openai/gpt-4o-mini",
}

// DefaultModel is used when a request names no model.
const DefaultModel = "mistralai/mistral-7b-instruct"

// DialogueModel is the default for diarization and question answering,
// which benefit from a larger context window.
const DialogueModel = "mistralai/mistral-nemo-instruct-2407"

// Pretrained pipeline models.
const (
	SummaryModelEN = "facebook/bart-large-cnn"
	SummaryModelAR = "csebuetnlp/mT5_multilingual_XLSum"

	TranslationModelENAR = "Helsinki-NLP/opus-mt-en-ar"
	TranslationModelAREN = "Helsinki-NLP/opus-mt-ar-en"
)

// Backend names a remote text-generation service.
type Backend string

const (
	BackendOpenRouter Backend = "openrouter"
	BackendGemini     Backend = "gemini"
)
