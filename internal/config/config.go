// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
)

// secretKeyHexLen is the length of a hex-encoded 32-byte AES-256 key.
const secretKeyHexLen = 64

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	// SecretKey seals the stored API key at rest. Nil stores it as plaintext.
	SecretKey []byte
}

// EncryptsCredentials reports whether stored credentials are sealed.
func (c *Config) EncryptsCredentials() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: ONCOASSIST_LISTEN_ADDR (127.0.0.1:8080),
// ONCOASSIST_DB_PATH (oncoassist.db). ONCOASSIST_SECRET_KEY, when set, must be
// 64 hex characters.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("ONCOASSIST_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "oncoassist.db"
	if v, ok := os.LookupEnv("ONCOASSIST_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("ONCOASSIST_SECRET_KEY"); ok && v != "" {
		if len(v) != secretKeyHexLen {
			return nil, fmt.Errorf("ONCOASSIST_SECRET_KEY must be %d hex characters, got %d", secretKeyHexLen, len(v))
		}
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("ONCOASSIST_SECRET_KEY is not valid hex: %w", err)
		}
		secretKey = key
	}

	return &Config{
		ListenAddr: listenAddr,
		DBPath:     dbPath,
		SecretKey:  secretKey,
	}, nil
}
