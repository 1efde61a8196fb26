package llm

import (
	"context"
	"errors"
	"strings"
)

// Completer is the generation capability the tutoring core depends on:
// one system prompt and one user prompt in, free-form text out. Any failure
// is reported as *ErrGenerationUnavailable.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// CompletionOptions tunes requests issued by a provider-backed Completer.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
}

// providerCompleter adapts a Provider to the Completer capability.
type providerCompleter struct {
	provider Provider
	opts     CompletionOptions
}

// NewCompleter returns a Completer that issues single-turn requests through p.
func NewCompleter(p Provider, opts CompletionOptions) Completer {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &providerCompleter{provider: p, opts: opts}
}

func (c *providerCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	purpose := PurposeFrom(ctx)
	resp, err := c.provider.Generate(ctx, UserRequest(system, user, c.opts.MaxTokens, c.opts.Temperature))
	if err != nil {
		return "", AsUnavailable(purpose, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", &ErrGenerationUnavailable{
			Purpose: purpose,
			Err:     &ErrInvalidResponse{Err: errors.New("empty completion")},
		}
	}
	return resp.Text, nil
}
