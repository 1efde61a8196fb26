package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/quizwise/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load away from the developer's real environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("QUIZWISE_DB", filepath.Join(dir, "test.db"))
	for _, k := range []string{"GROQ_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "test.db"), cfg.Database.DSN)
	assert.Equal(t, llm.ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Quiz.QuestionCount)
	assert.Equal(t, 1024, cfg.Coach.MaxTokens)
	assert.Equal(t, LockBackendLocal, cfg.Lock.Backend)
	assert.Equal(t, 30, cfg.Retention.LLMEventsDays)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZWISE_LLM_GROQ_API_KEY")
	assert.Contains(t, err.Error(), "QUIZWISE_SESSION_SECRET")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := isolate(t)
	yaml := `
server:
  addr: ":9000"
llm:
  provider: openai
  timeout: 5s
quiz:
  question_count: 8
lock:
  backend: redis
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizwise.yaml"), []byte(yaml), 0o644))
	t.Setenv("QUIZWISE_LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("QUIZWISE_SESSION_SECRET", "s3cret")
	t.Setenv("QUIZWISE_SERVER_ADDR", ":9100")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 8, cfg.Quiz.Orchestrator().QuestionCount)
	assert.Equal(t, LockBackendRedis, cfg.Lock.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUIZWISE_LLM_PROVIDER=mock\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUIZWISE_LLM_PROVIDER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Enums(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.LLM.Provider = llm.ProviderMock
	cfg.Session.Secret = "x"
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	cfg.Lock.Backend = "etcd"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown database driver: "mysql"`)
	assert.Contains(t, err.Error(), `unknown lock backend: "etcd"`)
}
