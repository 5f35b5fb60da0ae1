package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment helpers. Every getter treats an unset or blank variable as
// absent and falls back to def; values are trimmed before parsing. A value
// that does not parse also yields def, so a typo in .env degrades to the
// default instead of failing the run.

func lookupEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func getEnvString(key string, def string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return def
}

func getEnvInt(key string, def int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// getEnvBool accepts true/false, 1/0, yes/no, y/n and on/off in any case.
func getEnvBool(key string, def bool) bool {
	value, ok := lookupEnv(key)
	if !ok {
		return def
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}

// maskSecret keeps the first and last two characters of a key for LogEnvStatus
func maskSecret(value string) string {
	if value == "" {
		return "<missing>"
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return value[:2] + "***" + value[len(value)-2:]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
