package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gameclient/internal/flagx"
)

const defaultEnvFile = ".env"

// parseEnv loads the dotenv file (from -e/-env, or ./.env when present) into
// the process environment and then overlays matching variables onto cfg.
// Variables already set in the environment are not overridden by the file.
// A missing default .env is ignored; any other failure panics.
func parseEnv(cfg *Config) {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
