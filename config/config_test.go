package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("http:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "employee_salary.db", cfg.Database.Path)
	assert.Equal(t, "models/salary_model.json", cfg.Model.ArtifactPath)
	assert.Equal(t, 0.2, cfg.Training.TestRatio)
	assert.EqualValues(t, 42, cfg.Training.Seed)
	assert.Equal(t, "dev", cfg.Log.Env)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SALARY_DB", "/var/lib/salary/app.db")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: ${SALARY_DB}
model:
  artifact_path: /models/salary.json
  watch: true
  cache_size: 512
http:
  request_timeout: 2s
log:
  env: prod
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/salary/app.db", cfg.Database.Path)
	assert.True(t, cfg.Model.Watch)
	assert.Equal(t, 512, cfg.Model.CacheSize)
	assert.Equal(t, 2*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "prod", cfg.Log.Env)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"port out of range", "http:\n  port: 70000\n"},
		{"negative cache", "model:\n  cache_size: -1\n"},
		{"unknown env", "log:\n  env: staging\n"},
		{"test ratio", "training:\n  test_ratio: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
