// Package config reads the categorize command's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
)

// Oracle providers
const (
	ProviderLexical = "lexical"
	ProviderVoyage  = "voyage"
	ProviderOpenAI  = "openai"
)

// Config holds every setting of the categorize command
type Config struct {
	Oracle   OracleConfig
	Pinecone PineconeConfig
	Logging  LoggingConfig
	Workers  int
}

// OracleConfig selects and configures the similarity oracle
type OracleConfig struct {
	Provider       string
	VoyageAPIKey   string
	OpenAIAPIKey   string
	EmbeddingModel string
}

// PineconeConfig configures the optional persistent embedding cache
type PineconeConfig struct {
	APIKey    string
	Host      string
	Namespace string
}

// Enabled reports whether a Pinecone index is configured
func (p PineconeConfig) Enabled() bool {
	return p.APIKey != "" && p.Host != ""
}

// LoggingConfig configures console and rotating file logging
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads .env when present and builds the configuration from the environment
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:       strings.ToLower(getEnvString("ORACLE_PROVIDER", ProviderLexical)),
			VoyageAPIKey:   getEnvString("VOYAGEAI_API_KEY", ""),
			OpenAIAPIKey:   getEnvString("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnvString("EMBEDDING_MODEL", ""),
		},
		Pinecone: PineconeConfig{
			APIKey:    getEnvString("PINECONE_API_KEY", ""),
			Host:      getEnvString("PINECONE_HOST", ""),
			Namespace: getEnvString("PINECONE_NAMESPACE", "word-embeddings"),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Workers: max(1, getEnvInt("CATEGORIZE_WORKERS", 1)),
	}
}

// Validate checks that the selected provider has what it needs
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Oracle.Provider {
	case ProviderLexical:
	case ProviderVoyage:
		if c.Oracle.VoyageAPIKey == "" {
			return errors.New("VOYAGEAI_API_KEY is required for the voyage oracle")
		}
	case ProviderOpenAI:
		if c.Oracle.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai oracle")
		}
	default:
		return fmt.Errorf("unknown oracle provider %q (want %s, %s or %s)", c.Oracle.Provider, ProviderLexical, ProviderVoyage, ProviderOpenAI)
	}
	if (c.Pinecone.APIKey == "") != (c.Pinecone.Host == "") {
		return errors.New("PINECONE_API_KEY and PINECONE_HOST must be set together")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// LogEnvStatus logs the effective configuration with secrets masked
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	logger.Debug(
		"env_status",
		"env_file", fileExists(".env"),
		"oracle", cfg.Oracle.Provider,
		"embedding_model", cfg.Oracle.EmbeddingModel,
		"voyage_key", maskSecret(cfg.Oracle.VoyageAPIKey),
		"openai_key", maskSecret(cfg.Oracle.OpenAIAPIKey),
		"pinecone_enabled", cfg.Pinecone.Enabled(),
		"pinecone_namespace", cfg.Pinecone.Namespace,
		"workers", cfg.Workers,
	)
}
