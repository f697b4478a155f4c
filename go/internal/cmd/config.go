package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mcdev12/capspace/go/internal/dbconfig"
	"github.com/mcdev12/capspace/go/internal/rules"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DB              dbconfig.Config
	NATSURL         string
	Port            string
	RulesFile       string
	DeadlineWorkers int
	LogLevel        string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig() Config {
	return Config{
		DB:              dbconfig.NewConfigFromEnv(),
		NATSURL:         getEnv("NATS_URL", nats.DefaultURL),
		Port:            getEnv("PORT", "8080"),
		RulesFile:       getEnv("RULES_FILE", ""),
		DeadlineWorkers: getEnvAsInt("DEADLINE_WORKERS", 4),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// loadRules reads the league rule defaults, falling back to the built-in table without a file.
func loadRules(path string) (rules.Rules, error) {
	if path == "" {
		log.Info().Msg("no rules file configured, using built-in defaults")
		return rules.Default(), nil
	}
	r, err := rules.Load(path)
	if err != nil {
		return rules.Rules{}, fmt.Errorf("failed to load rules: %w", err)
	}
	log.Info().Str("path", path).Msg("loaded league rules")
	return r, nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
