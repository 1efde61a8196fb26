// Package tutor wires the quiz core, coach, store and locks into the
// operations exposed over HTTP and the CLI.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizwise/internal/coach"
	"github.com/abhisek/quizwise/internal/lock"
	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/store"
	"go.uber.org/zap"
)

// ErrLearnerRequired is returned when an operation has no learner identity.
var ErrLearnerRequired = errors.New("tutor: learner id is required")

// Observer receives quiz flow events. *metrics.Metrics implements it.
type Observer interface {
	QuizIssued(difficulty string)
	ProviderFormatError()
	Graded(difficulty string, scorePercent int)
}

type nopObserver struct{}

func (nopObserver) QuizIssued(string) {}
func (nopObserver) ProviderFormatError() {}
func (nopObserver) Graded(string, int) {}

// Deps are the collaborators of a Service. Observer, Log and Now are
// optional.
type Deps struct {
	Quizzes  *quiz.Orchestrator
	Coach    *coach.Coach
	Mastery  store.MasteryRepo
	Learners store.LearnerRepo
	Plans    store.PlanRepo
	Locker   lock.Locker
	Sealer   *quiz.Sealer
	Observer Observer
	Log      *zap.Logger
	Now      func() time.Time
}

// Service is the tutoring application layer.
type Service struct {
	quizzes  *quiz.Orchestrator
	coach    *coach.Coach
	mastery  store.MasteryRepo
	learners store.LearnerRepo
	plans    store.PlanRepo
	locker   lock.Locker
	sealer   *quiz.Sealer
	obs      Observer
	log      *zap.Logger
	now      func() time.Time
}

// NewService validates d and builds a Service.
func NewService(d Deps) (*Service, error) {
	switch {
	case d.Quizzes == nil, d.Coach == nil:
		return nil, errors.New("tutor: quiz orchestrator and coach are required")
	case d.Mastery == nil, d.Learners == nil, d.Plans == nil:
		return nil, errors.New("tutor: repositories are required")
	case d.Locker == nil, d.Sealer == nil:
		return nil, errors.New("tutor: locker and sealer are required")
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		quizzes:  d.Quizzes,
		coach:    d.Coach,
		mastery:  d.Mastery,
		learners: d.Learners,
		plans:    d.Plans,
		locker:   d.Locker,
		sealer:   d.Sealer,
		obs:      d.Observer,
		log:      d.Log.Named("tutor"),
		now:      d.Now,
	}, nil
}

// IssuedQuiz is a generated quiz plus the token that binds it to a learner.
type IssuedQuiz struct {
	Topic      string             `json:"topic"`
	Difficulty mastery.Difficulty `json:"difficulty"`
	Questions  []quiz.Question    `json:"questions"`
	Token      string             `json:"token"`
}

func (q *IssuedQuiz) session() *quiz.Session {
	return &quiz.Session{Topic: q.Topic, Difficulty: q.Difficulty, Questions: q.Questions}
}

// Submission is an issued quiz sent back with the learner's answers.
type Submission struct {
	IssuedQuiz
	Answers []*string `json:"answers"`
}

// StartQuiz issues a quiz on topic at the learner's current tier.
func (s *Service) StartQuiz(ctx context.Context, learnerID, topic string) (*IssuedQuiz, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, quiz.ErrEmptyTopic
	}

	prior, err := s.mastery.GetMastery(ctx, learnerID, topic)
	if err != nil {
		return nil, err
	}

	sess, err := s.quizzes.RequestQuiz(ctx, topic, prior)
	if err != nil {
		var pf *quiz.ErrProviderFormat
		if errors.As(err, &pf) {
			s.obs.ProviderFormatError()
		}
		return nil, err
	}

	token, err := s.sealer.Seal(learnerID, sess)
	if err != nil {
		return nil, err
	}
	s.obs.QuizIssued(sess.Difficulty.String())
	s.log.Info("issued quiz",
		zap.String("learner", learnerID),
		zap.String("topic", sess.Topic),
		zap.String("difficulty", sess.Difficulty.String()),
		zap.Int("questions", len(sess.Questions)),
	)

	return &IssuedQuiz{
		Topic:      sess.Topic,
		Difficulty: sess.Difficulty,
		Questions:  sess.Questions,
		Token:      token,
	}, nil
}

// SubmitQuiz grades sub and persists the updated mastery. Submissions for
// the same learner and topic are serialized.
func (s *Service) SubmitQuiz(ctx context.Context, learnerID string, sub Submission) (*quiz.GradingResult, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	if err := s.sealer.Verify(learnerID, sub.session(), sub.Token); err != nil {
		s.log.Warn("rejected submission", zap.String("learner", learnerID), zap.Error(err))
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lockKey(learnerID, sub.Topic))
	if err != nil {
		return nil, fmt.Errorf("lock %s/%s: %w", learnerID, sub.Topic, err)
	}
	defer release()

	questionsJSON, err := json.Marshal(sub.Questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}
	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	var result *quiz.GradingResult
	err = s.mastery.RecordGrading(ctx, learnerID, sub.Topic, func(prior *mastery.Record) (*store.GradingWrite, error) {
		res, err := quiz.Grade(quiz.GradeInput{
			LearnerID: learnerID,
			Topic:     sub.Topic,
			Questions: sub.Questions,
			Answers:   sub.Answers,
			Prior:     prior,
			Now:       s.now(),
		})
		if err != nil {
			return nil, err
		}
		result = res
		return &store.GradingWrite{
			Record: res.UpdatedMastery,
			Attempt: store.Attempt{
				Difficulty: sub.Difficulty,
				Questions:  questionsJSON,
				Answers:    answersJSON,
				Score:      res.RawScorePercent,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.obs.Graded(sub.Difficulty.String(), result.RawScorePercent)
	s.log.Info("graded quiz",
		zap.String("learner", learnerID),
		zap.String("topic", sub.Topic),
		zap.Int("score", result.RawScorePercent),
		zap.Int("mastery", result.UpdatedMastery.MasteryScore),
		zap.String("tier", result.UpdatedMastery.Difficulty.String()),
	)
	return result, nil
}

func lockKey(learnerID, topic string) string {
	return "grade:" + learnerID + ":" + topic
}

// Progress returns the learner's mastery records in insertion order.
func (s *Service) Progress(ctx context.Context, learnerID string) ([]mastery.Record, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	return s.mastery.ListMastery(ctx, learnerID)
}

// WeakTopics returns the learner's topics scoring below the weak threshold.
func (s *Service) WeakTopics(ctx context.Context, learnerID string) ([]string, error) {
	records, err := s.Progress(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return mastery.WeakTopics(records), nil
}

// Attempts returns the learner's most recent graded submissions.
func (s *Service) Attempts(ctx context.Context, learnerID string, limit int) ([]store.Attempt, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	return s.mastery.ListAttempts(ctx, learnerID, limit)
}

// PlanResult is a study plan and the weak topics it addresses.
type PlanResult struct {
	Plan       string   `json:"plan"`
	WeakTopics []string `json:"weakTopics"`
}

// StudyPlan builds a recovery plan from the learner's weak topics and goal.
// A plan is stored only when the generator produced one.
func (s *Service) StudyPlan(ctx context.Context, learnerID string) (*PlanResult, error) {
	weak, err := s.WeakTopics(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	goal, err := s.learners.LearningGoal(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	plan, err := s.coach.RequestPlan(ctx, weak, goal)
	if err != nil {
		return nil, err
	}
	if len(weak) > 0 {
		if err := s.plans.SaveStudyPlan(ctx, &store.StudyPlan{
			LearnerID:  learnerID,
			Plan:       plan,
			WeakTopics: weak,
			CreatedAt:  s.now(),
		}); err != nil {
			return nil, err
		}
	}
	return &PlanResult{Plan: plan, WeakTopics: weak}, nil
}

// LatestStudyPlan returns the most recently stored plan, or
// store.ErrNotFound.
func (s *Service) LatestStudyPlan(ctx context.Context, learnerID string) (*store.StudyPlan, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	return s.plans.LatestStudyPlan(ctx, learnerID)
}

// SetLearningGoal records the learner's goal used in study plans.
func (s *Service) SetLearningGoal(ctx context.Context, learnerID, goal string) error {
	if learnerID == "" {
		return ErrLearnerRequired
	}
	return s.learners.SetLearningGoal(ctx, learnerID, strings.TrimSpace(goal))
}

// Chat answers a free-form question.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	return s.coach.Chat(ctx, message)
}

// Explain explains a topic.
func (s *Service) Explain(ctx context.Context, topic string) (string, error) {
	return s.coach.Explain(ctx, topic)
}
