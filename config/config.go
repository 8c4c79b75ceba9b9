package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ============================================================================
// CONFIGURATION
// ============================================================================
// Settings come from three layers, later wins: built-in defaults, an optional
// .env file in the working directory, then VIZQL_* environment variables.
// GROQ_API_KEY is also honored without the prefix since that is the name the
// provider documents.
// ============================================================================

type Config struct {
	ListenAddr   string
	DBPath       string
	GroqAPIKey   string
	GroqModel    string
	GroqEndpoint string
	Theme        string
	LogLevel     string
	CORSOrigins  []string
}

// Load reads configuration from defaults, .env and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; it is a local-development convenience.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("db_path", "northwind.db")
	v.SetDefault("groq_api_key", "")
	v.SetDefault("groq_model", "gemma2-9b-it")
	v.SetDefault("groq_endpoint", "")
	v.SetDefault("theme", "light")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:3001",
		"http://127.0.0.1:5500",
	})

	v.SetEnvPrefix("VIZQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// An optional vizql.yaml in the working directory sits between defaults
	// and the environment.
	v.SetConfigName("vizql")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		ListenAddr:   v.GetString("listen_addr"),
		DBPath:       v.GetString("db_path"),
		GroqAPIKey:   v.GetString("groq_api_key"),
		GroqModel:    v.GetString("groq_model"),
		GroqEndpoint: v.GetString("groq_endpoint"),
		Theme:        v.GetString("theme"),
		LogLevel:     v.GetString("log_level"),
		CORSOrigins:  v.GetStringSlice("cors_origins"),
	}

	if cfg.GroqAPIKey == "" {
		cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.Theme != "light" && cfg.Theme != "dark" {
		return nil, fmt.Errorf("invalid theme %q: must be light or dark", cfg.Theme)
	}
	return &cfg, nil
}
