package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	def := DefaultSettings()
	assert.Equal(t, def.APIURL, settings.APIURL)
	assert.Equal(t, 10, settings.ArtworkLimit)
	assert.Equal(t, time.Duration(0), settings.RequestTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_url: https://vault.example.com\nartwork_limit: 3\nrequest_timeout: 15s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("VINYLVAULT_LOG_LEVEL", "warn")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://vault.example.com", settings.APIURL)
	assert.Equal(t, 3, settings.ArtworkLimit)
	assert.Equal(t, 15*time.Second, settings.RequestTimeout)
	assert.Equal(t, "warn", settings.LogLevel, "environment should override the file")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().APIURL, settings.APIURL)
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	t.Setenv("VINYLVAULT_API_URL", "not-a-url")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := DefaultSettings()
	s.APIURL = "https://vault.example.com/"
	s.ArtworkLimit = 7
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://vault.example.com/", loaded.APIURL)
	assert.Equal(t, "https://vault.example.com", loaded.BaseURL())
	assert.Equal(t, 7, loaded.ArtworkLimit)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", ResolvePath("/explicit.yaml"))

	t.Setenv(ConfigPathEnvVar, "/from-env.yaml")
	assert.Equal(t, "/from-env.yaml", ResolvePath(""))
}
