package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.SnapshotURL = "mem://localhost/areas"
	cfg.TombParallelism = 3
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"poll_interval_ms": 250}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, DefaultConfig().ListenAddr, cfg.ListenAddr)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err = LoadFrom(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MAPVISION_RULES_URL=rules.yaml\nMAPVISION_POLL_MS=100\n"), 0644))

	t.Setenv("MAPVISION_LISTEN_ADDR", ":9999")
	t.Setenv("MAPVISION_TOMB_PARALLELISM", "2")
	// O ambiente vence o arquivo
	t.Setenv("MAPVISION_POLL_MS", "50")
	// godotenv grava no ambiente do processo; t.Setenv garante a limpeza
	t.Setenv("MAPVISION_RULES_URL", "")
	require.NoError(t, os.Unsetenv("MAPVISION_RULES_URL"))

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 2, cfg.TombParallelism)
	assert.Equal(t, 50, cfg.PollIntervalMs)
	assert.Equal(t, "rules.yaml", cfg.RulesURL)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MAPVISION_POLL_MS", "rápido"},
		{"MAPVISION_POLL_MS", "0"},
		{"MAPVISION_TOMB_PARALLELISM", "0"},
		{"MAPVISION_TOMB_PARALLELISM", "-4"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := DefaultConfig()
			assert.Error(t, cfg.ApplyEnv(""))
			assert.Equal(t, DefaultConfig().TombParallelism, cfg.TombParallelism)
		})
	}
}

func TestApplyEnvMissingFile(t *testing.T) {
	assert.NoError(t, DefaultConfig().ApplyEnv(filepath.Join(t.TempDir(), "nada.env")))
}
