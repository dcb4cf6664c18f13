package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name in Config tags.
const EnvPrefix = "AUTHKEEPER_"

const defaultEnvFile = ".env"

// parseEnv loads the .env file (the one named by -env-file, or ./.env when it
// exists) and then overlays AUTHKEEPER_* variables onto config. Variables
// already set in the process environment win over the file.
func parseEnv(config *Config, args []string) error {
	envFile := flagx.LookupString(args, "env-file")
	if envFile == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			envFile = defaultEnvFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error checking %s: %w", defaultEnvFile, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}
