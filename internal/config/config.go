// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the spashell server configuration from the environment
// (optionally seeded from a .env file), with command line flags taking
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes all environment variable names.
const EnvPrefix = "SPASHELL_"

// Config stores the server runtime configuration.
type Config struct {
	Addr            string
	Dir             string // serve from this directory instead of the embedded bundle.
	LogLevel        string
	StrictAssets    bool
	BaseRewrite     bool
	Compression     bool
	TrustProxy      bool // take client addresses from X-Forwarded-For.
	ShutdownTimeout time.Duration

	RateLimit RateLimitConfig
}

// RateLimitConfig controls per-client request limits; a zero RPS disables
// rate limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Default returns the configuration used in absence of any environment
// variables and flags.
func Default() *Config {
	return &Config{
		Addr:            "0.0.0.0:8080",
		LogLevel:        "info",
		Compression:     true,
		ShutdownTimeout: 10 * time.Second,
		RateLimit: RateLimitConfig{
			Burst: 50,
		},
	}
}

// Load reads the configuration from the environment, after loading any .env
// files given. A missing .env file is not an error, but unparsable values are.
func Load(dotenvs ...string) (*Config, error) {
	for _, name := range dotenvs {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot load %s: %w", name, err)
		}
	}
	def := Default()
	env := &envReader{}
	cfg := &Config{
		Addr:            getEnv("ADDR", def.Addr),
		Dir:             getEnv("DIR", def.Dir),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", def.LogLevel)),
		StrictAssets:    parseEnv(env, "STRICT_ASSETS", def.StrictAssets, strconv.ParseBool),
		BaseRewrite:     parseEnv(env, "BASE_REWRITE", def.BaseRewrite, strconv.ParseBool),
		Compression:     parseEnv(env, "COMPRESSION", def.Compression, strconv.ParseBool),
		TrustProxy:      parseEnv(env, "TRUST_PROXY", def.TrustProxy, strconv.ParseBool),
		ShutdownTimeout: parseEnv(env, "SHUTDOWN_TIMEOUT", def.ShutdownTimeout, time.ParseDuration),
		RateLimit: RateLimitConfig{
			RPS:   parseEnv(env, "RATE_LIMIT_RPS", def.RateLimit.RPS, parseFloat),
			Burst: parseEnv(env, "RATE_LIMIT_BURST", def.RateLimit.Burst, strconv.Atoi),
		},
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RegisterFlags registers the command line flags overriding the
// configuration in cfg.
func (cfg *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on")
	flags.StringVar(&cfg.Dir, "dir", cfg.Dir, "serve the SPA from this directory instead of the embedded bundle")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.StrictAssets, "strict-assets", cfg.StrictAssets, "answer missing file-like paths with 404 instead of the SPA shell")
	flags.BoolVar(&cfg.BaseRewrite, "base-rewrite", cfg.BaseRewrite, "rewrite the SPA shell's <base href> from forwarding proxy headers")
	flags.BoolVar(&cfg.Compression, "compression", cfg.Compression, "compress responses")
	flags.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "take client addresses for rate limiting from X-Forwarded-For")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	flags.Float64Var(&cfg.RateLimit.RPS, "rate-limit-rps", cfg.RateLimit.RPS, "per-client requests per second, 0 disables")
	flags.IntVar(&cfg.RateLimit.Burst, "rate-limit-burst", cfg.RateLimit.Burst, "per-client request burst")
}

// Validate checks the configuration for consistency.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return errors.New("listen address must not be empty")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if cfg.RateLimit.RPS < 0 {
		return errors.New("rate limit RPS must not be negative")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst <= 0 {
		return errors.New("rate limit burst must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(EnvPrefix + key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// envReader collects the errors of parsing environment variable values.
type envReader struct {
	errs []error
}

// parseEnv returns the parsed value of the environment variable with the
// specified key, or fallback if the variable is unset or empty. Unparsable
// values are recorded in env and also yield fallback.
func parseEnv[T any](env *envReader, key string, fallback T, parse func(string) (T, error)) T {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := parse(strings.TrimSpace(value))
	if err != nil {
		env.errs = append(env.errs, fmt.Errorf("invalid %s%s value %q", EnvPrefix, key, value))
		return fallback
	}
	return parsed
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
