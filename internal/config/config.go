// Package config loads runtime configuration from environment
// variables. Required variables fail fast at startup; optional ones
// carry defaults suitable for local development.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds the core runtime settings. Each field maps to one
// environment variable.
type Config struct {
	Env             string // APP_ENV: dev, test or prod
	Port            string // APP_PORT: HTTP listen port
	DBUser          string // DB_USER
	DBPass          string // DB_PASS (empty allowed)
	DBHost          string // DB_HOST
	DBPort          string // DB_PORT
	DBName          string // DB_NAME
	JWTSecret       string // JWT_SECRET: HS256 signing secret
	AccessTTLMin    int    // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays  int    // REFRESH_TOKEN_TTL_DAYS
	BcryptCost      int    // BCRYPT_COST
	LogLevel        string // LOG_LEVEL: debug, info, warn, error
	OfferDeleteMode string // OFFER_DELETE_MODE: hard or soft
}

// Load reads the configuration. Missing required variables abort the
// process with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		OfferDeleteMode: getenv("OFFER_DELETE_MODE", "soft"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
