package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SIM_SUCCESS_RATE", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")

	cfg := Load()

	assert.Equal(t, ":3002", cfg.HTTPAddr)
	assert.Equal(t, "2.0.0", cfg.AppVersion)
	assert.Equal(t, 0.95, cfg.Simulation.SuccessRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.RechargeMinDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Simulation.RechargeMaxDelay)
	assert.Equal(t, time.Second, cfg.Simulation.BillPayInstantDelay)
	assert.Equal(t, 5*time.Second, cfg.Simulation.BillPayDelayedDelay)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadSimulationOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("SIM_SUCCESS_RATE", "0.5")
	t.Setenv("SIM_RECHARGE_MIN_DELAY", "10ms")
	t.Setenv("SIM_RECHARGE_MAX_DELAY", "20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 0.5, cfg.Simulation.SuccessRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Simulation.RechargeMinDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.Simulation.RechargeMaxDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestSimulationWithDefaultsRejectsInvertedRange(t *testing.T) {
	cfg := SimulationConfig{
		SuccessRate:      1.5,
		RechargeMinDelay: 3 * time.Second,
		RechargeMaxDelay: time.Second,
	}.WithDefaults()

	assert.Equal(t, 0.95, cfg.SuccessRate)
	assert.Equal(t, 500*time.Millisecond, cfg.RechargeMinDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.RechargeMaxDelay)
}

func TestLoadTelemetry(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)
	assert.True(t, cfg.Telemetry.OtelEnabled)
	assert.Equal(t, "http", cfg.Telemetry.OtlpProtocol)
	assert.Equal(t, 0.5, cfg.Telemetry.SamplingRatio)
}
