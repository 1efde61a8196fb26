// Package server exposes the tutoring service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abhisek/quizwise/internal/metrics"
	"github.com/abhisek/quizwise/internal/tracing"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure the HTTP surface. Metrics, Tracer, DB and Log are
// optional.
type Options struct {
	Tutor   Tutor
	Metrics *metrics.Metrics
	Tracer  trace.TracerProvider
	DB      Pinger
	Log     *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{svc: opts.Tutor, log: log.Named("http")}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Tracer != nil {
		r.Use(tracing.GinMiddleware(opts.Tracer))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", opts.Metrics.Handler())
	}

	r.GET("/health", func(c *gin.Context) {
		if opts.DB != nil {
			if err := opts.DB.Ping(c.Request.Context()); err != nil {
				fail(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		success(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api", requireLearner())
	{
		api.GET("/quiz/:topic", h.startQuiz)
		api.POST("/quiz/submit", h.submitQuiz)

		api.GET("/progress", h.progress)
		api.GET("/progress/weak", h.weakTopics)

		api.POST("/studyplan", h.generatePlan)
		api.GET("/studyplan", h.latestPlan)

		api.PUT("/profile/goal", h.setGoal)

		api.POST("/ai/chat", h.chat)
		api.POST("/ai/explain", h.explain)
	}
	return r
}

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
