// Package coach produces free-form tutoring text: recovery study plans,
// doubt-solving replies and topic explanations. Output is opaque prose and
// is returned exactly as generated.
package coach

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/quizwise/internal/llm"
	"go.uber.org/zap"
)

// NoWeakTopicsMessage is returned by RequestPlan when there is nothing to
// recover from.
const NoWeakTopicsMessage = "Great job! No weak topics detected. Keep practicing hard topics."

// ErrEmptyMessage is returned when Chat or Explain receive blank input.
var ErrEmptyMessage = errors.New("coach: message is required")

// Config holds the completion settings used for coach requests.
type Config struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// CompletionOptions converts c to the options a provider-backed Completer
// takes.
func (c Config) CompletionOptions() llm.CompletionOptions {
	return llm.CompletionOptions{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

// Coach issues tutoring requests against a generation capability.
type Coach struct {
	gen llm.Completer
	log *zap.Logger
}

// NewCoach creates a Coach backed by gen.
func NewCoach(gen llm.Completer, log *zap.Logger) *Coach {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coach{gen: gen, log: log.Named("coach")}
}

// RequestPlan returns a 7-day recovery plan for weakTopics. With no weak
// topics it returns NoWeakTopicsMessage without calling the generator.
// Failures are *llm.ErrGenerationUnavailable.
func (c *Coach) RequestPlan(ctx context.Context, weakTopics []string, goal string) (string, error) {
	if len(weakTopics) == 0 {
		return NoWeakTopicsMessage, nil
	}
	return c.complete(ctx, llm.PurposeStudyPlan, studyPlanSystemPrompt, buildPlanPrompt(weakTopics, goal))
}

// Chat answers a learner's question as a tutor. Known prompt-injection
// phrases are replaced before the message is sent.
func (c *Coach) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	cleaned := Sanitize(message)
	if cleaned != message {
		c.log.Info("removed prompt-injection phrases from chat message")
	}
	return c.complete(ctx, llm.PurposeChat, tutorSystemPrompt, cleaned)
}

// Explain returns a structured explanation of topic.
func (c *Coach) Explain(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyMessage
	}
	return c.complete(ctx, llm.PurposeExplain, explainSystemPrompt, "Explain: "+Sanitize(topic))
}

func (c *Coach) complete(ctx context.Context, purpose, system, user string) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)
	text, err := c.gen.Complete(ctx, system, user)
	if err != nil {
		c.log.Warn("generation failed", zap.String("purpose", purpose), zap.Error(err))
		return "", llm.AsUnavailable(purpose, err)
	}
	return text, nil
}
