package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abhisek/quizwise/internal/mastery"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// Attempt is one graded quiz submission as persisted.
type Attempt struct {
	ID         string
	LearnerID  string
	Topic      string
	Difficulty mastery.Difficulty
	Questions  json.RawMessage
	Answers    json.RawMessage
	Score      int
	CreatedAt  time.Time
}

// GradingWrite is what a grading callback asks RecordGrading to persist.
type GradingWrite struct {
	Record  mastery.Record
	Attempt Attempt
}

// GradingFunc computes the write for a grading given the current record,
// which is nil on the first attempt. It runs inside the store transaction
// and must not call back into the store.
type GradingFunc func(prior *mastery.Record) (*GradingWrite, error)

// MasteryRepo persists mastery records and quiz attempts.
type MasteryRepo interface {
	// GetMastery returns the record for (learnerID, topic), or nil if the
	// learner has never been graded on that topic.
	GetMastery(ctx context.Context, learnerID, topic string) (*mastery.Record, error)

	// ListMastery returns all of a learner's records in insertion order.
	ListMastery(ctx context.Context, learnerID string) ([]mastery.Record, error)

	// RecordGrading reads the current record, calls fn, and upserts the
	// resulting record and attempt, all in one transaction. An error
	// from fn aborts without writing anything.
	RecordGrading(ctx context.Context, learnerID, topic string, fn GradingFunc) error

	// ListAttempts returns a learner's most recent attempts, newest first.
	ListAttempts(ctx context.Context, learnerID string, limit int) ([]Attempt, error)
}

// LearnerRepo stores per-learner profile data.
type LearnerRepo interface {
	// SetLearningGoal records the learner's free-text goal.
	SetLearningGoal(ctx context.Context, learnerID, goal string) error

	// LearningGoal returns the learner's goal, or "" when none is set.
	LearningGoal(ctx context.Context, learnerID string) (string, error)
}

// StudyPlan is a generated remediation plan.
type StudyPlan struct {
	ID         string
	LearnerID  string
	Plan       string
	WeakTopics []string
	CreatedAt  time.Time
}

// PlanRepo stores generated study plans.
type PlanRepo interface {
	// SaveStudyPlan stores a new plan. ID and CreatedAt are filled in
	// when empty.
	SaveStudyPlan(ctx context.Context, plan *StudyPlan) error

	// LatestStudyPlan returns the most recent plan, or ErrNotFound.
	LatestStudyPlan(ctx context.Context, learnerID string) (*StudyPlan, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events matching opts, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event by ID, or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// PruneLLMEvents deletes events older than before and reports how
	// many were removed.
	PruneLLMEvents(ctx context.Context, before time.Time) (int64, error)
}
