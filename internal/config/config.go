package config

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	Mode     string
	LogLevel string

	ServerPort int

	DatabaseURL string

	TokenSecret []byte
	Algorithm   string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	PasswordHashName       string
	PasswordHashIterations int
	PasswordSaltSeparator  string

	MinUsernameLength int
	MaxUsernameLength int
	MinPasswordLength int
	MaxPasswordLength int

	CookieSecure   bool
	CookieSameSite http.SameSite

	KafkaBrokers []string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Mode:     EnvDefault("MODE", "DEV"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		TokenSecret: []byte(os.Getenv("TOKEN_SECRET_KEY")),
		Algorithm:   EnvDefault("ALGORITHM", "HS256"),

		AccessTokenTTL:  time.Duration(EnvIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(EnvIntDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,

		PasswordHashName:       EnvDefault("PASSWORD_HASH_NAME", "sha256"),
		PasswordHashIterations: EnvIntDefault("PASSWORD_HASH_ITERATIONS", 100000),
		PasswordSaltSeparator:  EnvDefault("PASSWORD_SALT_SEPARATOR", "$"),

		MinUsernameLength: EnvIntDefault("MIN_USERNAME_LENGTH", 3),
		MaxUsernameLength: EnvIntDefault("MAX_USERNAME_LENGTH", 30),
		MinPasswordLength: EnvIntDefault("MIN_PASSWORD_LENGTH", 8),
		MaxPasswordLength: EnvIntDefault("MAX_PASSWORD_LENGTH", 64),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
	}

	// Cookie policy is relaxed outside of PROD so the frontend can run on
	// plain http during development and tests.
	if cfg.Mode == "PROD" {
		cfg.CookieSecure = true
		cfg.CookieSameSite = http.SameSiteStrictMode
	} else {
		cfg.CookieSecure = false
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
