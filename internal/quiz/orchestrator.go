package quiz

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/quizwise/internal/llm"
	"github.com/abhisek/quizwise/internal/mastery"
	"go.uber.org/zap"
)

// DefaultQuestionCount is the batch size requested when none is configured.
const DefaultQuestionCount = 5

// Config tunes quiz generation.
type Config struct {
	QuestionCount int `mapstructure:"question_count"`
}

// Orchestrator issues quizzes at the difficulty implied by a learner's
// mastery. It never reads or writes mastery state itself.
type Orchestrator struct {
	gen   llm.Completer
	count int
	log   *zap.Logger
}

// NewOrchestrator creates an Orchestrator backed by gen.
func NewOrchestrator(gen llm.Completer, cfg Config, log *zap.Logger) *Orchestrator {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{gen: gen, count: cfg.QuestionCount, log: log.Named("quiz")}
}

// DifficultyFor returns easy for a first attempt and the mastery tier
// otherwise.
func DifficultyFor(prior *mastery.Record) mastery.Difficulty {
	if prior == nil {
		return mastery.DifficultyEasy
	}
	return mastery.TierFor(prior.MasteryScore)
}

// RequestQuiz generates a quiz for topic. prior is the learner's current
// record for the topic, or nil if there is none.
//
// Errors are ErrEmptyTopic, *llm.ErrGenerationUnavailable or
// *ErrProviderFormat. The batch size the generator returns is accepted as
// long as every question is valid.
func (o *Orchestrator) RequestQuiz(ctx context.Context, topic string, prior *mastery.Record) (*Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	difficulty := DifficultyFor(prior)
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)

	raw, err := o.gen.Complete(ctx, systemPrompt, buildUserPrompt(topic, difficulty, o.count))
	if err != nil {
		return nil, llm.AsUnavailable(llm.PurposeQuizGen, err)
	}

	questions, err := ParseQuestions(Repair(raw))
	if err != nil {
		var pf *ErrProviderFormat
		if errors.As(err, &pf) {
			pf.Raw = raw
		}
		o.log.Warn("rejected generated quiz",
			zap.String("topic", topic),
			zap.String("difficulty", difficulty.String()),
			zap.Error(err),
			zap.String("raw", truncate(raw, 200)),
		)
		return nil, err
	}

	if len(questions) != o.count {
		o.log.Debug("generator returned a different batch size",
			zap.Int("requested", o.count), zap.Int("returned", len(questions)))
	}

	return &Session{Topic: topic, Difficulty: difficulty, Questions: questions}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
