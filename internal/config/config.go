// Package config loads quizwise settings from quizwise.yaml, a .env file
// and QUIZWISE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/quizwise/internal/coach"
	"github.com/abhisek/quizwise/internal/llm"
	"github.com/abhisek/quizwise/internal/quiz"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       llm.Config      `mapstructure:"llm"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Coach     coach.Config    `mapstructure:"coach"`
	Session   SessionConfig   `mapstructure:"session"`
	Lock      LockConfig      `mapstructure:"lock"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// QuizConfig groups batch size and the completion settings used for quiz
// generation.
type QuizConfig struct {
	QuestionCount int     `mapstructure:"question_count"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature"`
}

// Orchestrator returns the orchestrator settings.
func (q QuizConfig) Orchestrator() quiz.Config {
	return quiz.Config{QuestionCount: q.QuestionCount}
}

// CompletionOptions returns the generation settings for quizzes.
func (q QuizConfig) CompletionOptions() llm.CompletionOptions {
	return llm.CompletionOptions{MaxTokens: q.MaxTokens, Temperature: q.Temperature}
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

type LockConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RetentionConfig struct {
	LLMEventsDays int `mapstructure:"llm_events_days"`
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", store.DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("llm.provider", llmDefaults.Provider)
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.openrouter.model", llmDefaults.OpenRouter.Model)
	v.SetDefault("llm.groq.model", llmDefaults.Groq.Model)
	for _, p := range []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini, llm.ProviderOpenRouter, llm.ProviderGroq} {
		// Registered so QUIZWISE_LLM_<PROVIDER>_* variables reach Unmarshal.
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".base_url", "")
	}
	v.SetDefault("llm.retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", llmDefaults.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", llmDefaults.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", llmDefaults.Retry.Multiplier)
	v.SetDefault("llm.timeout", llmDefaults.Timeout)
	v.SetDefault("quiz.question_count", quiz.DefaultQuestionCount)
	v.SetDefault("quiz.max_tokens", 1024)
	v.SetDefault("quiz.temperature", 0.7)
	v.SetDefault("coach.max_tokens", 1024)
	v.SetDefault("coach.temperature", 0.7)
	v.SetDefault("session.secret", "")
	v.SetDefault("lock.backend", LockBackendLocal)
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("retention.llm_events_days", 30)
}

// Load reads configuration. path names an explicit config file; when empty,
// quizwise.yaml is searched in the working directory and
// $HOME/.config/quizwise. A missing file is not an error.
//
// When no key is configured for the selected provider, standard vendor
// variables such as GROQ_API_KEY are probed.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quizwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/quizwise")
		}
	}

	v.SetEnvPrefix("QUIZWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if !cfg.LLM.HasKey() {
		if discovered, ok := llm.DiscoverConfig(cfg.LLM); ok {
			cfg.LLM = discovered
		}
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == store.DriverSQLite {
		dsn, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Database.DSN = dsn
	}

	return &cfg, nil
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("QUIZWISE_SESSION_SECRET is required"))
	}
	switch c.Database.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver: %q", c.Database.Driver))
	}
	if c.Database.Driver == store.DriverPostgres && c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required for postgres"))
	}
	switch c.Lock.Backend {
	case LockBackendLocal, LockBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown lock backend: %q", c.Lock.Backend))
	}
	if c.Quiz.QuestionCount <= 0 {
		errs = append(errs, fmt.Errorf("quiz.question_count must be positive, got %d", c.Quiz.QuestionCount))
	}
	return errors.Join(errs...)
}
