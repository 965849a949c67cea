package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TEXT_BACKEND", "")
	os.Unsetenv("TEXT_BACKEND")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ListenAddr)
	assert.Equal(t, BackendGemini, cfg.TextBackend)
	assert.Equal(t, 2*time.Minute, cfg.GatewayTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("TEXT_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("GATEWAY_TIMEOUT", "30s")
	t.Setenv("SESSION_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "claude", cfg.TextBackend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.Equal(t, "gm-test", cfg.GeminiAPIKey)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestLoadFallsBackToAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.GeminiAPIKey)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "GATEWAY_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "gemini ok", cfg: Config{TextBackend: BackendGemini, GeminiAPIKey: "k"}},
		{name: "ollama ok", cfg: Config{TextBackend: BackendOllama, GeminiAPIKey: "k"}},
		{name: "claude ok", cfg: Config{TextBackend: BackendClaude, GeminiAPIKey: "k", ClaudeAPIKey: "c"}},
		{name: "missing gemini key", cfg: Config{TextBackend: BackendOllama}, wantErr: "GEMINI_API_KEY"},
		{name: "missing claude key", cfg: Config{TextBackend: BackendClaude, GeminiAPIKey: "k"}, wantErr: "CLAUDE_API_KEY"},
		{name: "unknown backend", cfg: Config{TextBackend: "gpt", GeminiAPIKey: "k"}, wantErr: "unknown TEXT_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("real environment wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("NEUROPOST_TEST_A=from-file\nNEUROPOST_TEST_B=from-file\n"), 0600))
		t.Setenv("NEUROPOST_TEST_A", "from-env")
		t.Setenv("NEUROPOST_TEST_B", "")
		os.Unsetenv("NEUROPOST_TEST_B")

		require.NoError(t, LoadEnvFile(path))
		t.Cleanup(func() { os.Unsetenv("NEUROPOST_TEST_B") })

		assert.Equal(t, "from-env", os.Getenv("NEUROPOST_TEST_A"))
		assert.Equal(t, "from-file", os.Getenv("NEUROPOST_TEST_B"))
	})
}
