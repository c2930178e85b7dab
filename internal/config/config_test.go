package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_HOST", "REDIS_HOST", "REDIS_PORT", "REDIS_ADDR", "CORS_ORIGINS", "TOKEN_TTL_HOURS"} {
		t.Setenv(k, "")
	}

	cfg, loaded := Load("does-not-exist.env")

	assert.False(t, loaded)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, _ := Load("does-not-exist.env")

	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DSN(), "@db:5432/shop?sslmode=disable")
}

func TestNewRedisClient_NoAddress(t *testing.T) {
	assert.Nil(t, NewRedisClient(Config{}))
}
