package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizwise/internal/store"
	"go.uber.org/zap"
)

// LatencyObserver receives the outcome of every recorded request.
type LatencyObserver interface {
	ObserveLLMRequest(purpose string, success bool, elapsed time.Duration)
}

// RecordingProvider is a decorator that records every request as an event,
// logs it, and reports latency to an optional observer.
type RecordingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *zap.Logger
	observer LatencyObserver
}

// WithRecording wraps a Provider with event recording. events and observer
// may be nil.
func WithRecording(p Provider, providerName string, events store.EventRepo, log *zap.Logger, observer LatencyObserver) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordingProvider{
		inner:    p,
		provider: providerName,
		events:   events,
		log:      log.Named("llm"),
		observer: observer,
	}
}

func (l *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	elapsed := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}

	fields := []zap.Field{
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", purpose),
		zap.Duration("elapsed", elapsed),
		zap.Int("input_tokens", data.InputTokens),
		zap.Int("output_tokens", data.OutputTokens),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.log.Debug("llm request", fields...)
	}

	if l.observer != nil {
		l.observer.ObserveLLMRequest(purpose, err == nil, elapsed)
	}

	// A failed write is logged and never fails the request. The event is
	// written even when the caller's context was cancelled.
	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("failed to record llm request event", zap.Error(logErr))
		}
	}

	return resp, err
}

func (l *RecordingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
