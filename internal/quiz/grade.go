package quiz

import (
	"time"

	"github.com/abhisek/quizwise/internal/mastery"
)

// GradeInput is everything needed to grade one submission.
type GradeInput struct {
	LearnerID string
	Topic     string
	Questions []Question
	// Answers holds one entry per question; nil means unanswered.
	Answers []*string
	// Prior is the learner's current record for Topic, or nil.
	Prior *mastery.Record
	Now   time.Time
}

// GradingResult is the outcome of grading one submission.
type GradingResult struct {
	RawScorePercent int            `json:"rawScorePercent"`
	CorrectCount    int            `json:"correctCount"`
	Outcomes        []bool         `json:"outcomes"`
	UpdatedMastery  mastery.Record `json:"updatedMastery"`
}

// Grade scores a submission by exact string match and folds it into the
// learner's cumulative mastery. It fails only with *ErrMalformedSubmission,
// and never returns a partial result.
func Grade(in GradeInput) (*GradingResult, error) {
	if in.LearnerID == "" || in.Topic == "" {
		return nil, malformed("learner and topic are required")
	}
	if len(in.Questions) == 0 {
		return nil, malformed("no questions")
	}
	if len(in.Answers) != len(in.Questions) {
		return nil, malformed("%d answers for %d questions", len(in.Answers), len(in.Questions))
	}
	if err := validateQuestions(in.Questions); err != nil {
		return nil, malformed("%v", err)
	}
	if in.Prior != nil {
		if in.Prior.LearnerID != in.LearnerID || in.Prior.Topic != in.Topic {
			return nil, malformed("prior record belongs to %s/%s", in.Prior.LearnerID, in.Prior.Topic)
		}
		if err := in.Prior.Validate(); err != nil {
			return nil, malformed("prior record: %v", err)
		}
	}

	outcomes := make([]bool, len(in.Questions))
	correct := 0
	for i, q := range in.Questions {
		if a := in.Answers[i]; a != nil && *a == q.CorrectAnswer {
			outcomes[i] = true
			correct++
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &GradingResult{
		RawScorePercent: mastery.Score(correct, len(in.Questions)),
		CorrectCount:    correct,
		Outcomes:        outcomes,
		UpdatedMastery:  mastery.Apply(in.Prior, in.LearnerID, in.Topic, len(in.Questions), correct, now),
	}, nil
}
