package server

import (
	"errors"
	"net/http"

	"github.com/abhisek/quizwise/internal/coach"
	"github.com/abhisek/quizwise/internal/llm"
	"github.com/abhisek/quizwise/internal/lock"
	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/abhisek/quizwise/internal/tutor"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	var (
		pf *quiz.ErrProviderFormat
		ms *quiz.ErrMalformedSubmission
		gu *llm.ErrGenerationUnavailable
	)
	switch {
	case errors.As(err, &pf):
		return http.StatusBadGateway, "AI returned invalid format. Please try again."
	case errors.As(err, &ms):
		return http.StatusBadRequest, ms.Error()
	case errors.As(err, &gu):
		return http.StatusServiceUnavailable, "AI service is temporarily unavailable"
	case errors.Is(err, quiz.ErrEmptyTopic), errors.Is(err, coach.ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, tutor.ErrLearnerRequired):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, lock.ErrNotAcquired):
		return http.StatusServiceUnavailable, "Request timed out, please retry"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *handler) writeError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
	fail(c, code, msg)
}
