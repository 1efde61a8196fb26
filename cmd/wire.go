package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quizwise/internal/coach"
	"github.com/abhisek/quizwise/internal/config"
	"github.com/abhisek/quizwise/internal/llm"
	"github.com/abhisek/quizwise/internal/lock"
	"github.com/abhisek/quizwise/internal/logging"
	"github.com/abhisek/quizwise/internal/metrics"
	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/abhisek/quizwise/internal/tracing"
	"github.com/abhisek/quizwise/internal/tutor"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig reads configuration and applies the --db override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

// openStore opens the configured database.
func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// app is the fully wired service graph.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	metrics *metrics.Metrics
	tracer  *tracing.Provider
	tutor   *tutor.Service
	closers []func()

	// ephemeralSecret is set when tokens are signed with a per-process key.
	ephemeralSecret bool
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type appOptions struct {
	// server enables tracing, metrics and the shared lock backend, and
	// requires a configured session secret.
	server bool
}

// buildApp wires every component from configuration.
func buildApp(ctx context.Context, cmd *cobra.Command, opts appOptions) (_ *app, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	ephemeral := !opts.server && cfg.Session.Secret == ""
	if ephemeral {
		cfg.Session.Secret = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, ephemeralSecret: ephemeral}
	a.closers = append(a.closers, func() { _ = log.Sync() })
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.store, err = openStore(cfg); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { a.store.Close() })

	deps := llm.Deps{Events: a.store.EventRepo(), Log: log}
	if opts.server {
		a.metrics = metrics.New(nil)
		deps.Observer = a.metrics

		if a.tracer, err = tracing.Init(cfg.Tracing.Enabled, cfg.Tracing.CollectorEndpoint); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = a.tracer.Shutdown(context.Background()) })
		deps.Tracer = a.tracer
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, deps)
	if err != nil {
		return nil, err
	}

	locker, err := newLocker(ctx, cfg, opts.server, a)
	if err != nil {
		return nil, err
	}

	sealer, err := quiz.NewSealer(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}

	svcDeps := tutor.Deps{
		Quizzes:  quiz.NewOrchestrator(llm.NewCompleter(provider, cfg.Quiz.CompletionOptions()), cfg.Quiz.Orchestrator(), log),
		Coach:    coach.NewCoach(llm.NewCompleter(provider, cfg.Coach.CompletionOptions()), log),
		Mastery:  a.store.MasteryRepo(),
		Learners: a.store.LearnerRepo(),
		Plans:    a.store.PlanRepo(),
		Locker:   locker,
		Sealer:   sealer,
		Log:      log,
	}
	if a.metrics != nil {
		svcDeps.Observer = a.metrics
	}
	if a.tutor, err = tutor.NewService(svcDeps); err != nil {
		return nil, err
	}
	return a, nil
}

func newLocker(ctx context.Context, cfg *config.Config, server bool, a *app) (lock.Locker, error) {
	if !server || cfg.Lock.Backend == config.LockBackendLocal {
		return lock.NewLocalLocker(), nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { client.Close() })
	return lock.NewRedisLocker(client, cfg.Lock.TTL), nil
}

// describe turns a service error into a message for terminal users.
func describe(err error) error {
	var gu *llm.ErrGenerationUnavailable
	var pf *quiz.ErrProviderFormat
	switch {
	case errors.As(err, &pf):
		return fmt.Errorf("the AI returned an invalid quiz, please try again (%s)", pf.Reason)
	case errors.As(err, &gu):
		return fmt.Errorf("AI service unavailable: %w", gu.Err)
	}
	return err
}
