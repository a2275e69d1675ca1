package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"nexusboard/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	DevMode     bool

	SessionSecret string
	JWTSecret     string
	TokenTTL      time.Duration
	CookieSecure  bool
	BcryptCost    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	// Rate limits
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	MutationRateLimit  int
	MutationRateWindow time.Duration
}

// Load reads .env and the environment, exiting on invalid configuration.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	devMode := envBool("DEV_MODE", false)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && !devMode {
		return nil, errors.New("DATABASE_URL is not set")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	channel := os.Getenv("REDIS_CHANNEL")
	if channel == "" {
		channel = "nexusboard:events"
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		DevMode:     devMode,

		SessionSecret: sessionSecret,
		JWTSecret:     jwtSecret,
		TokenTTL:      time.Duration(envInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		CookieSecure:  envBool("COOKIE_SECURE", false),
		BcryptCost:    envInt("BCRYPT_COST", 12),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntAllowZero("REDIS_DB", 0),
		RedisChannel:  channel,

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:      strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogJSON:       envBool("LOG_JSON", false),

		AuthRateLimit:      envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:     time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		MutationRateLimit:  envInt("MUTATION_RATE_LIMIT", 120),
		MutationRateWindow: time.Duration(envInt("MUTATION_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}, nil
}

// envInt returns a positive integer from the environment or def.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envIntAllowZero(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
