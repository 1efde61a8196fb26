package mastery

import (
	"errors"
	"fmt"
	"time"
)

// Record is the cumulative attempt history of one learner on one topic.
// MasteryScore and Difficulty are derived from the counts and must never be
// set independently; use Apply to produce updated records.
type Record struct {
	LearnerID       string     `json:"learnerId"`
	Topic           string     `json:"topic"`
	TotalQuestions  int        `json:"totalQuestions"`
	CorrectAnswers  int        `json:"correctAnswers"`
	MasteryScore    int        `json:"masteryScore"`
	Difficulty      Difficulty `json:"difficultyTier"`
	LastAttemptedAt time.Time  `json:"lastAttemptedAt"`
}

// Apply folds one graded quiz into prior and returns the new record. A nil
// prior starts a fresh history for (learnerID, topic).
func Apply(prior *Record, learnerID, topic string, asked, correct int, now time.Time) Record {
	rec := Record{LearnerID: learnerID, Topic: topic}
	if prior != nil {
		rec.TotalQuestions = prior.TotalQuestions
		rec.CorrectAnswers = prior.CorrectAnswers
	}
	rec.TotalQuestions += asked
	rec.CorrectAnswers += correct
	rec.MasteryScore = Score(rec.CorrectAnswers, rec.TotalQuestions)
	rec.Difficulty = TierFor(rec.MasteryScore)
	rec.LastAttemptedAt = now
	return rec
}

// Validate checks the record invariants: non-negative counts, correct not
// exceeding total, and derived fields matching the policy functions.
func (r *Record) Validate() error {
	if r.LearnerID == "" || r.Topic == "" {
		return errors.New("mastery record: learner and topic are required")
	}
	if r.TotalQuestions < 0 || r.CorrectAnswers < 0 {
		return fmt.Errorf("mastery record %s/%s: negative counts", r.LearnerID, r.Topic)
	}
	if r.CorrectAnswers > r.TotalQuestions {
		return fmt.Errorf("mastery record %s/%s: %d correct exceeds %d total",
			r.LearnerID, r.Topic, r.CorrectAnswers, r.TotalQuestions)
	}
	if want := Score(r.CorrectAnswers, r.TotalQuestions); r.MasteryScore != want {
		return fmt.Errorf("mastery record %s/%s: score %d, want %d",
			r.LearnerID, r.Topic, r.MasteryScore, want)
	}
	if want := TierFor(r.MasteryScore); r.Difficulty != want {
		return fmt.Errorf("mastery record %s/%s: difficulty %q, want %q",
			r.LearnerID, r.Topic, r.Difficulty, want)
	}
	return nil
}

// Accuracy returns the correct ratio in [0, 1].
func (r *Record) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalQuestions)
}
