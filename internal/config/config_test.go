package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
backend:
  base_url: https://plants.example.com/
  identify_path: /api/identify
  validate_responses: true
server:
  port: 9000
  description: Find out what grows in your garden.
dropzone:
  dir: /tmp/plantid-drop
  settle: 2s
  auto_identify: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plantid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://plants.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "/api/identify", cfg.Backend.IdentifyPath)
	assert.Equal(t, "/test-local", cfg.Backend.TestLocalPath)
	assert.Equal(t, "/model-info", cfg.Backend.ModelInfoPath)
	assert.True(t, cfg.Backend.ValidateResponses)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "Find out what grows in your garden.", cfg.Server.Description)
	assert.Equal(t, "/tmp/plantid-drop", cfg.Dropzone.Dir)
	assert.Equal(t, 2*time.Second, cfg.Dropzone.Settle.Duration)
	assert.True(t, cfg.Dropzone.AutoIdentify)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "/identify", cfg.Backend.IdentifyPath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Dropzone.Settle.Duration)
	assert.False(t, cfg.Backend.ValidateResponses)
	assert.False(t, cfg.Dropzone.AutoIdentify)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("PLANTID_BACKEND", "http://backend.internal:5000")
	t.Setenv("PLANTID_DROP", "/srv/drop")

	yaml := `
backend:
  base_url: ${PLANTID_BACKEND}
dropzone:
  dir: $PLANTID_DROP
`
	path := writeConfig(t, yaml)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "/srv/drop", cfg.Dropzone.Dir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/plantid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "backend: [unterminated\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "dropzone:\n  settle: soon\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid duration "soon"`)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "relative base url",
			yaml:    "backend:\n  base_url: plants.example.com\n",
			wantErr: "backend.base_url must be an absolute URL",
		},
		{
			name:    "unsupported scheme",
			yaml:    "backend:\n  base_url: ftp://plants.example.com\n",
			wantErr: "backend.base_url scheme must be http or https",
		},
		{
			name:    "path without slash",
			yaml:    "backend:\n  test_local_path: test-local\n",
			wantErr: "backend.test_local_path must start with",
		},
		{
			name:    "port out of range",
			yaml:    "server:\n  port: 70000\n",
			wantErr: "server.port must be between 0 and 65535",
		},
		{
			name:    "negative settle",
			yaml:    "dropzone:\n  dir: /tmp/x\n  settle: -1s\n",
			wantErr: "dropzone.settle must be positive",
		},
		{
			name:    "auto identify without dir",
			yaml:    "dropzone:\n  auto_identify: true\n",
			wantErr: "dropzone.dir is required when dropzone.auto_identify is true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MultipleValidationErrors(t *testing.T) {
	yaml := `
backend:
  base_url: nope
  identify_path: identify
server:
  port: -1
`
	path := writeConfig(t, yaml)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
	assert.Contains(t, err.Error(), "backend.identify_path")
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "plantid.yaml")

	cfg, err := LoadOrDefault(missing, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(missing, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")

	path := writeConfig(t, "server:\n  port: 9100\n")
	cfg, err = LoadOrDefault(path, false)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}
