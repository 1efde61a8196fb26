package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradeWith(asked, correct int, now time.Time) GradingFunc {
	return func(prior *mastery.Record) (*GradingWrite, error) {
		rec := mastery.Apply(prior, "l1", "recursion", asked, correct, now)
		difficulty := mastery.DifficultyEasy
		if prior != nil {
			difficulty = prior.Difficulty
		}
		return &GradingWrite{
			Record: rec,
			Attempt: Attempt{
				Difficulty: difficulty,
				Questions:  json.RawMessage(`[]`),
				Answers:    json.RawMessage(`[]`),
				Score:      mastery.Score(correct, asked),
			},
		}, nil
	}
}

func TestGetMasteryMissing(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.MasteryRepo().GetMastery(t.Context(), "l1", "recursion")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecordGradingAccumulates(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := t.Context()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordGrading(ctx, "l1", "recursion", gradeWith(5, 3, now)))

	rec, err := repo.GetMastery(ctx, "l1", "recursion")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 5, rec.TotalQuestions)
	assert.Equal(t, 3, rec.CorrectAnswers)
	assert.Equal(t, 60, rec.MasteryScore)
	assert.Equal(t, mastery.DifficultyMedium, rec.Difficulty)
	assert.True(t, rec.LastAttemptedAt.Equal(now))

	later := now.Add(time.Hour)
	require.NoError(t, repo.RecordGrading(ctx, "l1", "recursion", gradeWith(5, 5, later)))

	rec, err = repo.GetMastery(ctx, "l1", "recursion")
	require.NoError(t, err)
	assert.Equal(t, 10, rec.TotalQuestions)
	assert.Equal(t, 8, rec.CorrectAnswers)
	assert.Equal(t, 80, rec.MasteryScore)
	assert.Equal(t, mastery.DifficultyMedium, rec.Difficulty)

	attempts, err := repo.ListAttempts(ctx, "l1", 0)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 100, attempts[0].Score, "newest first")
	assert.Equal(t, 60, attempts[1].Score)
}

func TestRecordGradingCallbackErrorWritesNothing(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := t.Context()
	boom := errors.New("boom")

	err := repo.RecordGrading(ctx, "l1", "recursion", func(*mastery.Record) (*GradingWrite, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	rec, err := repo.GetMastery(ctx, "l1", "recursion")
	require.NoError(t, err)
	assert.Nil(t, rec)

	attempts, err := repo.ListAttempts(ctx, "l1", 0)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestRecordGradingRejectsInconsistentRecord(t *testing.T) {
	s := openTestStore(t)
	err := s.MasteryRepo().RecordGrading(t.Context(), "l1", "recursion", func(*mastery.Record) (*GradingWrite, error) {
		return &GradingWrite{Record: mastery.Record{
			LearnerID: "l1", Topic: "recursion",
			TotalQuestions: 5, CorrectAnswers: 3,
			MasteryScore: 99, Difficulty: mastery.DifficultyHard,
		}}, nil
	})
	require.Error(t, err)
}

func TestRecordGradingRejectsForeignRecord(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	err := s.MasteryRepo().RecordGrading(t.Context(), "l1", "graphs", gradeWith(5, 3, now))
	require.Error(t, err)
}

func TestListMasteryInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := t.Context()
	now := time.Now().UTC()

	for _, topic := range []string{"sorting", "graphs", "arrays"} {
		require.NoError(t, repo.RecordGrading(ctx, "l1", topic, func(prior *mastery.Record) (*GradingWrite, error) {
			return &GradingWrite{Record: mastery.Apply(prior, "l1", topic, 4, 1, now)}, nil
		}))
	}
	// Regrading an existing topic keeps its position.
	require.NoError(t, repo.RecordGrading(ctx, "l1", "sorting", func(prior *mastery.Record) (*GradingWrite, error) {
		return &GradingWrite{Record: mastery.Apply(prior, "l1", "sorting", 4, 4, now)}, nil
	}))

	recs, err := repo.ListMastery(ctx, "l1")
	require.NoError(t, err)
	topics := make([]string, len(recs))
	for i, r := range recs {
		topics[i] = r.Topic
	}
	assert.Equal(t, []string{"sorting", "graphs", "arrays"}, topics)
	assert.Equal(t, []string{"graphs", "arrays"}, mastery.WeakTopics(recs))

	other, err := repo.ListMastery(ctx, "l2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStoredRecordRevalidated(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := t.Context()
	require.NoError(t, repo.RecordGrading(ctx, "l1", "recursion", gradeWith(5, 3, time.Now())))

	_, err := s.DB().Exec(`UPDATE mastery_records SET difficulty = 'hard'`)
	require.NoError(t, err)

	_, err = repo.GetMastery(ctx, "l1", "recursion")
	require.Error(t, err)
}

func TestLearningGoal(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := t.Context()

	goal, err := repo.LearningGoal(ctx, "l1")
	require.NoError(t, err)
	assert.Empty(t, goal)

	require.NoError(t, repo.SetLearningGoal(ctx, "l1", "pass the data structures exam"))
	require.NoError(t, repo.SetLearningGoal(ctx, "l1", "ace interviews"))

	goal, err = repo.LearningGoal(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "ace interviews", goal)
}

func TestStudyPlans(t *testing.T) {
	s := openTestStore(t)
	repo := s.PlanRepo()
	ctx := t.Context()

	_, err := repo.LatestStudyPlan(ctx, "l1")
	require.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first := &StudyPlan{LearnerID: "l1", Plan: "day 1: graphs", WeakTopics: []string{"graphs"}, CreatedAt: base}
	require.NoError(t, repo.SaveStudyPlan(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &StudyPlan{LearnerID: "l1", Plan: "day 1: sorting", WeakTopics: []string{"sorting", "heaps"}, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.SaveStudyPlan(ctx, second))

	latest, err := repo.LatestStudyPlan(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "day 1: sorting", latest.Plan)
	assert.Equal(t, []string{"sorting", "heaps"}, latest.WeakTopics)
	assert.True(t, latest.CreatedAt.Equal(second.CreatedAt))
}
