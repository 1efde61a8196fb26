package llm

import "fmt"

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.1-8b-instant"
)

// groqModels maps friendly names to Groq model IDs.
var groqModels = map[string]string{
	"llama-instant":   defaultGroqModel,
	"llama-versatile": "llama-3.3-70b-versatile",
}

// GroqProvider targets Groq's OpenAI-compatible chat completions endpoint.
type GroqProvider struct {
	*OpenAIProvider
}

// NewGroqProvider creates a provider targeting the Groq API.
func NewGroqProvider(cfg GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGroqModel
	}

	return &GroqProvider{
		OpenAIProvider: newOpenAICompatible(cfg.APIKey, baseURL, resolveModel(model, groqModels)),
	}, nil
}
