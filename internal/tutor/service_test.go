package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/quizwise/internal/coach"
	"github.com/abhisek/quizwise/internal/llm"
	"github.com/abhisek/quizwise/internal/lock"
	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type countingObserver struct {
	mu           sync.Mutex
	issued       map[string]int
	formatErrors int
	graded       []int
}

func (o *countingObserver) QuizIssued(d string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.issued == nil {
		o.issued = map[string]int{}
	}
	o.issued[d]++
}

func (o *countingObserver) ProviderFormatError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.formatErrors++
}

func (o *countingObserver) Graded(_ string, score int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.graded = append(o.graded, score)
}

type fixture struct {
	svc   *Service
	store *store.Store
	obs   *countingObserver
	plans []string
}

// batch returns a generated quiz of n questions whose answer is "base case".
func batch(n int) string {
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{
			Prompt:        fmt.Sprintf("Q%d?", i+1),
			Options:       []string{"base case", "loop", "heap"},
			CorrectAnswer: "base case",
		}
	}
	b, _ := json.Marshal(qs)
	return "```json\n" + string(b) + "\n```"
}

// newFixture builds a Service over a fresh SQLite store. Quiz requests
// always return a valid 5-question batch; coach requests return reply or
// fail with coachErr.
func newFixture(t *testing.T, reply string, coachErr error) *fixture {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "tutor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st, obs: &countingObserver{}}

	gen := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		if llm.PurposeFrom(ctx) == llm.PurposeQuizGen {
			return batch(5), nil
		}
		f.plans = append(f.plans, user)
		if coachErr != nil {
			return "", llm.AsUnavailable(llm.PurposeFrom(ctx), coachErr)
		}
		return reply, nil
	})

	sealer, err := quiz.NewSealer("test-secret")
	require.NoError(t, err)

	f.svc, err = NewService(Deps{
		Quizzes:  quiz.NewOrchestrator(gen, quiz.Config{}, nil),
		Coach:    coach.NewCoach(gen, nil),
		Mastery:  st.MasteryRepo(),
		Learners: st.LearnerRepo(),
		Plans:    st.PlanRepo(),
		Locker:   lock.NewLocalLocker(),
		Sealer:   sealer,
		Observer: f.obs,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return f
}

// answer builds a submission answering the first `correct` questions right.
func answer(q *IssuedQuiz, correct int) Submission {
	sub := Submission{IssuedQuiz: *q, Answers: make([]*string, len(q.Questions))}
	for i := range sub.Answers {
		a := "loop"
		if i < correct {
			a = q.Questions[i].CorrectAnswer
		}
		sub.Answers[i] = &a
	}
	return sub
}

func TestNewService_RequiresDeps(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}

func TestQuizLifecycle(t *testing.T) {
	f := newFixture(t, "", nil)
	ctx := t.Context()

	q, err := f.svc.StartQuiz(ctx, "l1", "  Recursion ")
	require.NoError(t, err)
	assert.Equal(t, "Recursion", q.Topic)
	assert.Equal(t, mastery.DifficultyEasy, q.Difficulty)
	assert.NotEmpty(t, q.Token)

	res, err := f.svc.SubmitQuiz(ctx, "l1", answer(q, 3))
	require.NoError(t, err)
	assert.Equal(t, 60, res.RawScorePercent)
	assert.Equal(t, mastery.DifficultyMedium, res.UpdatedMastery.Difficulty)

	q2, err := f.svc.StartQuiz(ctx, "l1", "Recursion")
	require.NoError(t, err)
	assert.Equal(t, mastery.DifficultyMedium, q2.Difficulty)

	res, err = f.svc.SubmitQuiz(ctx, "l1", answer(q2, 5))
	require.NoError(t, err)
	assert.Equal(t, 80, res.UpdatedMastery.MasteryScore)

	records, err := f.svc.Progress(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].TotalQuestions)
	assert.Equal(t, 8, records[0].CorrectAnswers)
	assert.Equal(t, testNow, records[0].LastAttemptedAt)

	attempts, err := f.svc.Attempts(ctx, "l1", 10)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)

	assert.Equal(t, map[string]int{"easy": 1, "medium": 1}, f.obs.issued)
	assert.Equal(t, []int{60, 100}, f.obs.graded)
}

func TestSubmitQuiz_RejectsTampering(t *testing.T) {
	f := newFixture(t, "", nil)
	ctx := t.Context()

	q, err := f.svc.StartQuiz(ctx, "l1", "Recursion")
	require.NoError(t, err)

	tests := []struct {
		name    string
		learner string
		mutate  func(*Submission)
	}{
		{"answer key rewritten", "l1", func(s *Submission) {
			s.Questions = append([]quiz.Question(nil), s.Questions...)
			s.Questions[0].CorrectAnswer = "loop"
		}},
		{"difficulty raised", "l1", func(s *Submission) { s.Difficulty = mastery.DifficultyHard }},
		{"replayed by another learner", "l2", func(*Submission) {}},
		{"answer count mismatch", "l1", func(s *Submission) { s.Answers = s.Answers[:2] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := answer(q, 5)
			tt.mutate(&sub)
			_, err := f.svc.SubmitQuiz(ctx, tt.learner, sub)
			var ms *quiz.ErrMalformedSubmission
			assert.True(t, errors.As(err, &ms), "got %T (%v)", err, err)
		})
	}

	rec, err := f.store.MasteryRepo().GetMastery(ctx, "l1", "Recursion")
	require.NoError(t, err)
	assert.Nil(t, rec, "rejected submissions must not touch mastery")
}

func TestSubmitQuiz_ConcurrentSubmissionsSerialize(t *testing.T) {
	f := newFixture(t, "", nil)
	ctx := t.Context()

	q, err := f.svc.StartQuiz(ctx, "l1", "Recursion")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.SubmitQuiz(ctx, "l1", answer(q, 5)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	rec, err := f.store.MasteryRepo().GetMastery(ctx, "l1", "Recursion")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 20, rec.TotalQuestions)
	assert.Equal(t, 20, rec.CorrectAnswers)
}

func TestStartQuiz_Errors(t *testing.T) {
	f := newFixture(t, "", nil)

	_, err := f.svc.StartQuiz(t.Context(), "", "Recursion")
	assert.ErrorIs(t, err, ErrLearnerRequired)

	_, err = f.svc.StartQuiz(t.Context(), "l1", "   ")
	assert.ErrorIs(t, err, quiz.ErrEmptyTopic)
}

func TestStartQuiz_CountsFormatErrors(t *testing.T) {
	st, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "tutor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	gen := llm.CompleterFunc(func(context.Context, string, string) (string, error) {
		return "Sorry, I can't help with that.", nil
	})
	sealer, _ := quiz.NewSealer("k")
	obs := &countingObserver{}
	svc, err := NewService(Deps{
		Quizzes:  quiz.NewOrchestrator(gen, quiz.Config{}, nil),
		Coach:    coach.NewCoach(gen, nil),
		Mastery:  st.MasteryRepo(),
		Learners: st.LearnerRepo(),
		Plans:    st.PlanRepo(),
		Locker:   lock.NewLocalLocker(),
		Sealer:   sealer,
		Observer: obs,
	})
	require.NoError(t, err)

	_, err = svc.StartQuiz(t.Context(), "l1", "Recursion")
	var pf *quiz.ErrProviderFormat
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, 1, obs.formatErrors)
}

func TestStudyPlan(t *testing.T) {
	f := newFixture(t, "Day 1: recursion drills", nil)
	ctx := t.Context()

	// No history: the fixed message, nothing stored, generator untouched.
	res, err := f.svc.StudyPlan(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, coach.NoWeakTopicsMessage, res.Plan)
	assert.Empty(t, f.plans)
	_, err = f.svc.LatestStudyPlan(ctx, "l1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// 2/5 leaves Recursion weak.
	q, err := f.svc.StartQuiz(ctx, "l1", "Recursion")
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(ctx, "l1", answer(q, 2))
	require.NoError(t, err)
	require.NoError(t, f.svc.SetLearningGoal(ctx, "l1", " pass finals "))

	weak, err := f.svc.WeakTopics(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Recursion"}, weak)

	res, err = f.svc.StudyPlan(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "Day 1: recursion drills", res.Plan)
	assert.Equal(t, []string{"Recursion"}, res.WeakTopics)
	require.Len(t, f.plans, 1)
	assert.Contains(t, f.plans[0], "Student goal: pass finals")

	latest, err := f.svc.LatestStudyPlan(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "Day 1: recursion drills", latest.Plan)
	assert.Equal(t, []string{"Recursion"}, latest.WeakTopics)
}

func TestStudyPlan_FailureStoresNothing(t *testing.T) {
	f := newFixture(t, "", errors.New("upstream 500"))
	ctx := t.Context()

	q, err := f.svc.StartQuiz(ctx, "l1", "Graphs")
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(ctx, "l1", answer(q, 0))
	require.NoError(t, err)

	_, err = f.svc.StudyPlan(ctx, "l1")
	var gu *llm.ErrGenerationUnavailable
	require.True(t, errors.As(err, &gu))

	_, err = f.svc.LatestStudyPlan(ctx, "l1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChatAndExplain(t *testing.T) {
	f := newFixture(t, "reply", nil)

	got, err := f.svc.Chat(t.Context(), "what is a jailbreak?")
	require.NoError(t, err)
	assert.Equal(t, "reply", got)
	assert.Equal(t, "what is a [removed]?", f.plans[0])

	got, err = f.svc.Explain(t.Context(), "heaps")
	require.NoError(t, err)
	assert.Equal(t, "reply", got)
}
