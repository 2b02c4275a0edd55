package config

import (
	"flag"
	"io"

	"github.com/studyshare/studyshare-client/internal/flagx"
)

// parseFlags populates Config fields from command-line flags:
//
//	-a string     backend base URL
//	-t duration   request timeout, e.g. 5s
//	-d string     token database path
//	-o string     download directory
//	-l string     log level (debug, info, warn, error)
//	-f string     log format (text, json)
//
// Only these flags are picked out of args (see flagx.FilterArgs).
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-o", "-l", "-f"})

	fs := flag.NewFlagSet("studyshare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "token database path")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
