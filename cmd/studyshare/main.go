package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/studyshare/studyshare-client/internal/buildinfo"
	"github.com/studyshare/studyshare-client/internal/client/cli"
	"github.com/studyshare/studyshare-client/internal/client/config"
	"github.com/studyshare/studyshare-client/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := loadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}

// loadConfig turns a configuration panic into a fatal log line.
func loadConfig() (cfg *config.Config) {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("invalid configuration: %v", r)
		}
	}()
	return config.LoadConfig()
}
