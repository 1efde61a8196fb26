package server

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/abhisek/quizwise/internal/tutor"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Tutor is the service behind the API. *tutor.Service implements it.
type Tutor interface {
	StartQuiz(ctx context.Context, learnerID, topic string) (*tutor.IssuedQuiz, error)
	SubmitQuiz(ctx context.Context, learnerID string, sub tutor.Submission) (*quiz.GradingResult, error)
	Progress(ctx context.Context, learnerID string) ([]mastery.Record, error)
	WeakTopics(ctx context.Context, learnerID string) ([]string, error)
	StudyPlan(ctx context.Context, learnerID string) (*tutor.PlanResult, error)
	LatestStudyPlan(ctx context.Context, learnerID string) (*store.StudyPlan, error)
	SetLearningGoal(ctx context.Context, learnerID, goal string) error
	Chat(ctx context.Context, message string) (string, error)
	Explain(ctx context.Context, topic string) (string, error)
}

type handler struct {
	svc Tutor
	log *zap.Logger
}

func (h *handler) startQuiz(c *gin.Context) {
	q, err := h.svc.StartQuiz(c.Request.Context(), learnerID(c), c.Param("topic"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	success(c, q)
}

func (h *handler) submitQuiz(c *gin.Context) {
	var sub tutor.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.SubmitQuiz(c.Request.Context(), learnerID(c), sub)
	if err != nil {
		h.writeError(c, err)
		return
	}
	success(c, res)
}

func (h *handler) progress(c *gin.Context) {
	records, err := h.svc.Progress(c.Request.Context(), learnerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if records == nil {
		records = []mastery.Record{}
	}
	success(c, records)
}

func (h *handler) weakTopics(c *gin.Context) {
	topics, err := h.svc.WeakTopics(c.Request.Context(), learnerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	success(c, gin.H{"weakTopics": topics})
}

func (h *handler) generatePlan(c *gin.Context) {
	plan, err := h.svc.StudyPlan(c.Request.Context(), learnerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, plan)
}

type studyPlanView struct {
	ID         string   `json:"id"`
	Plan       string   `json:"plan"`
	WeakTopics []string `json:"weakTopics"`
	CreatedAt  string   `json:"createdAt"`
}

func (h *handler) latestPlan(c *gin.Context) {
	plan, err := h.svc.LatestStudyPlan(c.Request.Context(), learnerID(c))
	if errors.Is(err, store.ErrNotFound) {
		success(c, gin.H{})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	success(c, studyPlanView{
		ID:         plan.ID,
		Plan:       plan.Plan,
		WeakTopics: plan.WeakTopics,
		CreatedAt:  plan.CreatedAt.Format(time.RFC3339),
	})
}

func (h *handler) setGoal(c *gin.Context) {
	var body struct {
		Goal string `json:"goal"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.SetLearningGoal(c.Request.Context(), learnerID(c), body.Goal); err != nil {
		h.writeError(c, err)
		return
	}
	success(c, gin.H{"goal": body.Goal})
}

func (h *handler) chat(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	reply, err := h.svc.Chat(c.Request.Context(), body.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	success(c, gin.H{"reply": reply})
}

func (h *handler) explain(c *gin.Context) {
	var body struct {
		Topic string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	text, err := h.svc.Explain(c.Request.Context(), body.Topic)
	if err != nil {
		h.writeError(c, err)
		return
	}
	success(c, gin.H{"explanation": text})
}
