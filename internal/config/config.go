// Package config holds the engine's fixed constants and loads its runtime settings
// from the environment (optionally seeded from a .env file).
package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the server and the admin CLI.
type Config struct {
	HTTPAddr      string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	LogLevel      string
	LogPretty     bool
	// MaxPageLimit caps the page size a caller may request.
	MaxPageLimit int
}

// Load reads .env when present and resolves every setting from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_DSN", "host=localhost user=user password=password dbname=modflowdb port=5432 sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("MAX_PAGE_LIMIT", DefaultMaxPageLimit)

	cfg := &Config{
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogPretty:     v.GetBool("LOG_PRETTY"),
		MaxPageLimit:  v.GetInt("MAX_PAGE_LIMIT"),
	}
	if cfg.MaxPageLimit < 1 {
		cfg.MaxPageLimit = DefaultMaxPageLimit
	}
	return cfg
}
