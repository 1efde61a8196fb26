package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhisek/quizwise/internal/retention"
	"github.com/abhisek/quizwise/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cmd, appOptions{server: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}
		gin.SetMode(a.cfg.Server.Mode)

		if days := a.cfg.Retention.LLMEventsDays; days > 0 {
			sched, err := retention.Start(retention.NewPruner(a.store.EventRepo(), days, a.log), 24*time.Hour)
			if err != nil {
				return err
			}
			defer sched.Stop()
		}

		router := server.NewRouter(server.Options{
			Tutor:   a.tutor,
			Metrics: a.metrics,
			Tracer:  a.tracer,
			DB:      a.store,
			Log:     a.log,
		})

		a.log.Info("starting quizwise",
			zap.String("version", version),
			zap.String("llm_provider", a.cfg.LLM.Provider),
			zap.String("database", a.cfg.Database.Driver),
			zap.String("lock", a.cfg.Lock.Backend),
		)
		return server.Serve(ctx, a.cfg.Server.Addr, router, 10*time.Second, a.log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
