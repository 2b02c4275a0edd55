package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "studyshare.db", c.DatabasePath)
	assert.Equal(t, "downloads", c.DownloadDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
}

func TestLoad_NoSources_ReturnsDefaults(t *testing.T) {
	cfg := Load(nil)

	require.NotNil(t, cfg)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"api_base_url":    "http://from-json:8000",
		"request_timeout": "3s",
		"download_dir":    "/tmp/json-downloads",
		"log_format":      "json",
	})
	t.Setenv("STUDYSHARE_API_BASE_URL", "http://from-env:8000")
	t.Setenv("STUDYSHARE_LOG_LEVEL", "warn")

	cfg := Load([]string{"-c", path, "-a", "http://from-flag:8000", "-t", "7s", "shell", "words"})

	want := defaults()
	want.APIBaseURL = "http://from-flag:8000"
	want.RequestTimeout = 7 * time.Second
	want.DownloadDir = "/tmp/json-downloads"
	want.LogFormat = "json"
	want.LogLevel = "warn"

	assert.Empty(t, cmp.Diff(want, cfg))
}
