package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	JWTSecret string
	TokenTTL  time.Duration

	AdminEmail    string
	AdminPassword string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	CORSOrigins []string
	StatsCron   string
}

// Load reads configs/.env when present and fills every field, applying defaults.
// It returns whether the env file was found so the caller can log it.
func Load(envFile string) (Config, bool) {
	loaded := godotenv.Load(envFile) == nil

	cfg := Config{
		Port:      getenv("PORT", "8080"),
		GinMode:   getenv("GIN_MODE", "debug"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  time.Duration(getenvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "postgres"),
		DBSslMode:  getenv("DB_SSLMODE", "disable"),

		RedisAddr:     redisAddr(),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		RabbitMQURL: getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),

		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		StatsCron:   getenv("STATS_CRON", "@every 1m"),
	}

	return cfg, loaded
}

// DSN builds the postgres connection URL.
func (c Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSslMode
}

// IsRelease reports whether gin runs in release mode.
func (c Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// REDIS_HOST/REDIS_PORT take precedence over REDIS_ADDR.
func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	return os.Getenv("REDIS_ADDR")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
