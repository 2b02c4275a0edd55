package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/studyshare/studyshare-client/internal/flagx"
)

const EnvPrefix = "STUDYSHARE_"

// parseEnv overlays cfg with STUDYSHARE_* variables. A dotenv file named by
// -e/-env-file must exist; otherwise ./.env is loaded when present.
// Variables already set in the process win over the file.
func parseEnv(cfg *Config, args []string) {
	if envFile := flagx.EnvFileFlag(args); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
