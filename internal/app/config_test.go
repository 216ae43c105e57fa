package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[storage]
data_dir = "/var/lib/thesisflow/data"

[policy]
guidance_cap = 7

[workflow]
cooling_off_minutes = 1

[security]
hasher = "bcrypt"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/thesisflow/data", config.Storage.DataDir)
	assert.Equal(t, 7, config.Policy.GuidanceCap)
	assert.Equal(t, 1, config.Workflow.CoolingOffMinutes)
	assert.Equal(t, "bcrypt", config.Security.Hasher)

	// Unset values fall back to defaults.
	assert.Equal(t, "uploads/theses", config.Storage.UploadDir)
	assert.Equal(t, 10, config.Policy.ReviewCap)
	assert.Equal(t, 60, config.Sessions.TTLMinutes)
	assert.Equal(t, "", config.Sessions.RedisURL)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "data", config.Storage.DataDir)
	assert.Equal(t, 5, config.Policy.GuidanceCap)
	assert.Equal(t, 3, config.Workflow.CoolingOffMinutes)
	assert.Equal(t, "sha256", config.Security.Hasher)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "this is not = [valid toml"))
	assert.Error(t, err)
}
