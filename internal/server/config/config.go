// Package config handles configuration for the authkeeper server: defaults,
// an optional JSON file, an optional .env file, AUTHKEEPER_* environment
// variables and command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretKeyLength is the shortest HMAC secret accepted at startup.
const MinSecretKeyLength = 32

// Config holds runtime settings for the authkeeper server. It is built once
// in main and shared read-only afterwards.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses of the two transports; empty disables one.
//   - DatabaseDSN: empty for the in-memory store, postgres:// or sqlite:// otherwise.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Has no default
//     and is read from the environment (or .env) only.
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - BcryptCost / HashConcurrency: password hashing work factor and parallelism.
type Config struct {
	HTTPAddr                    string        `env:"HTTP_ADDR"`
	GRPCAddr                    string        `env:"GRPC_ADDR"`
	DatabaseDSN                 string        `env:"DATABASE_DSN"`
	SecretKey                   string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_TTL"`
	BcryptCost                  int           `env:"BCRYPT_COST"`
	HashConcurrency             int           `env:"HASH_CONCURRENCY"`
	LogLevel                    string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults. SecretKey is left
// empty on purpose, so a server never starts with a well-known key.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.HashConcurrency = runtime.NumCPU()
	c.LogLevel = "info"
}

// Validate checks the constraints the rest of the server relies on.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SecretKey) < MinSecretKeyLength {
		errs = append(errs, fmt.Errorf("secret key must be at least %d bytes, set AUTHKEEPER_SECRET_KEY", MinSecretKeyLength))
	}
	if c.AccessTokenValidityDuration < time.Second {
		errs = append(errs, errors.New("access token validity must be at least 1s"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.HashConcurrency <= 0 {
		errs = append(errs, errors.New("hash concurrency must be positive"))
	}
	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		errs = append(errs, errors.New("at least one of the HTTP and gRPC addresses is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config from os.Args and the environment and validates it.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
