package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/utils"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PF_USE_LLM", "PF_MODEL", "OPENAI_API_KEY", "PF_CACHE_TTL", "PF_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.UseLLM)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, utils.LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, evaluator.AllCriteria(), cfg.Criteria)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PF_USE_LLM", "true")
	t.Setenv("PF_MODEL", "gpt-4")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PF_CACHE_TTL", "1m")
	t.Setenv("PF_LOG_LEVEL", "debug")
	t.Setenv("PF_MAX_RETRIES", "5")
	t.Setenv("PF_PROMPT_TOKEN_LIMIT", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.UseLLM)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 0, cfg.PromptLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("PF_LOG_LEVEL", "loud")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		opts    []ConfigOption
		wantErr bool
	}{
		{"defaults", nil, false},
		{"unsupported model", []ConfigOption{SetModel("davinci")}, true},
		{"temperature out of range", []ConfigOption{SetTemperature(3)}, true},
		{"bad base url", []ConfigOption{SetBaseURL("not a url")}, true},
		{"llm without key", []ConfigOption{SetUseLLM(true)}, true},
		{"llm with key", []ConfigOption{SetUseLLM(true), SetAPIKey("sk")}, false},
		{"negative history size", []ConfigOption{SetHistorySize(-1)}, true},
		{"negative prompt limit", []ConfigOption{SetPromptLimit(-1)}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			ApplyOptions(cfg, tc.opts...)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetLogLevelUpdatesLogger(t *testing.T) {
	logger := utils.NewMockLogger()
	logger.On("SetLevel", utils.LogLevelDebug).Return()

	cfg := NewConfig()
	ApplyOptions(cfg, SetLogger(logger), SetLogLevel(utils.LogLevelDebug))

	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Same(t, logger, cfg.GetLogger())
	logger.AssertExpectations(t)
}

func TestSetMaxTokensFloor(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg, SetMaxTokens(0))
	assert.Equal(t, 1, cfg.MaxTokens)
}

func TestParseCriteria(t *testing.T) {
	criteria, err := ParseCriteria([]byte("clarity: true\nformat: true\nexamples: false\n"))
	require.NoError(t, err)
	assert.Equal(t, evaluator.Criteria{Clarity: true, Format: true}, criteria)

	criteria, err = ParseCriteria([]byte(`{"context": true}`))
	require.NoError(t, err)
	assert.Equal(t, evaluator.Criteria{Context: true}, criteria)

	criteria, err = ParseCriteria(nil)
	require.NoError(t, err)
	assert.True(t, criteria.None())

	_, err = ParseCriteria([]byte("tone: true\n"))
	assert.Error(t, err)
}

func TestLoadCriteriaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yml")
	require.NoError(t, os.WriteFile(path, []byte("constraints: true\n"), 0o600))

	criteria, err := LoadCriteriaFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{evaluator.CriterionConstraints}, criteria.EnabledNames())

	_, err = LoadCriteriaFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
