package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath        string
	DeckPath      string
	LogLevel      string
	MaxCards      int
	IncludeNew    bool
	IncludeReview bool
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the tool still runs when .env is absent.
	_ = godotenv.Load()

	return Config{
		DBPath:        envOr("DB_PATH", "file:studycards.db"),
		DeckPath:      envOr("DECK_PATH", "deck.json"),
		LogLevel:      envOr("LOG_LEVEL", "INFO"),
		MaxCards:      envIntOr("MAX_CARDS", 20),
		IncludeNew:    envBoolOr("INCLUDE_NEW", true),
		IncludeReview: envBoolOr("INCLUDE_REVIEW", true),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.DeckPath == "" {
		problems = append(problems, "DECK_PATH cannot be empty")
	}
	if c.MaxCards <= 0 {
		problems = append(problems, fmt.Sprintf("MAX_CARDS must be positive, got %d", c.MaxCards))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
