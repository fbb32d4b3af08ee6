package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/vidkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A dotenv file
// (the -env flag, or .env in the working directory) is loaded first when
// present; variables already set in the process environment take precedence
// over it.
//
// Only variables that are present override the current value, so defaults
// and JSON values survive an empty environment. Duration variables use
// time.ParseDuration syntax ("15m", "240h").
//
// Invalid values panic, mirroring the JSON loader.
func parseEnv(config *Config) {
	if path := flagx.EnvFilePath(os.Args[1:]); path != "" {
		_ = godotenv.Load(path)
	} else {
		_ = godotenv.Load()
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
