package config

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "GRPC_ADDR", "REDIS_ADDR", "REPORT_TIMEOUT", "REPORT_CACHE_TTL",
		"REPORT_QUERY_CONCURRENCY", "REPORT_TIMEZONE", "TOKEN_TTL", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.GRPCAddr)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 10*time.Second, cfg.ReportTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	assert.Equal(t, 4, cfg.QueryConcurrency)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REPORT_TIMEOUT", "3s")
	t.Setenv("REPORT_QUERY_CONCURRENCY", "8")
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.ReportTimeout)
	assert.Equal(t, 8, cfg.QueryConcurrency)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidFallsBack(t *testing.T) {
	t.Setenv("REPORT_TIMEOUT", "soon")
	t.Setenv("REPORT_QUERY_CONCURRENCY", "-2")
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.ReportTimeout)
	assert.Equal(t, 4, cfg.QueryConcurrency)
	assert.Equal(t, time.Local, cfg.Location)
}
