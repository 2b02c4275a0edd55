package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the StudyShare CLI.
type Config struct {
	// APIBaseURL is the backend origin, e.g. http://localhost:8000.
	APIBaseURL string `env:"API_BASE_URL"`
	// RequestTimeout bounds every backend call, bootstrap included.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	// DatabasePath is the SQLite file holding the persisted tokens.
	DatabasePath string `env:"DB_PATH"`
	DownloadDir  string `env:"DOWNLOAD_DIR"`
	LogLevel     string `env:"LOG_LEVEL"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "studyshare.db"
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from os.Args. See Load.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load applies defaults, then the JSON file, the environment and finally
// the flags found in args. Later sources take precedence. Malformed input
// panics.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
