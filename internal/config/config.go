package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Telemetry TelemetryConfig

	CatalogFile        string
	SimulationFile     string
	CORSAllowedOrigins []string

	Simulation SimulationConfig
	RateLimit  RateLimitConfig
}

// SimulationConfig tunes the simulated processing pipeline.
type SimulationConfig struct {
	// Seed fixes the random source; zero seeds from the wall clock.
	Seed                int64         `mapstructure:"-"`
	SuccessRate         float64       `mapstructure:"success_rate"`
	RechargeMinDelay    time.Duration `mapstructure:"recharge_min_delay"`
	RechargeMaxDelay    time.Duration `mapstructure:"recharge_max_delay"`
	BillPayInstantDelay time.Duration `mapstructure:"billpay_instant_delay"`
	BillPayDelayedDelay time.Duration `mapstructure:"billpay_delayed_delay"`
}

// TelemetryConfig configures logging, tracing and OTLP metric export.
type TelemetryConfig struct {
	LogLevel  string
	LogFormat string

	OtelEnabled   bool
	OtlpEndpoint  string
	OtlpProtocol  string
	SamplingRatio float64
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RechargeRate  float64
	RechargeBurst int
	BillPayRate   float64
	BillPayBurst  int

	SubmissionLockTTLSeconds int
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	port := strings.TrimSpace(getenv("PORT", "3002"))

	return Config{
		AppName:            getenv("APP_SERVICE", "rechargemock"),
		AppVersion:         getenv("APP_VERSION", "2.0.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":"+port),
		Telemetry:          loadTelemetry(),
		CatalogFile:        strings.TrimSpace(getenv("CATALOG_FILE", "")),
		SimulationFile:     strings.TrimSpace(getenv("SIMULATION_FILE", "")),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		Simulation:         DefaultSimulationConfig().fromEnv(),
		RateLimit: RateLimitConfig{
			Enabled:                  getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:                strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "localhost:6379")),
			RedisPassword:            getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:                  getenvInt("RATE_LIMIT_REDIS_DB", 0),
			RechargeRate:             getenvFloat("RATE_LIMIT_RECHARGE_RATE", 1),
			RechargeBurst:            getenvInt("RATE_LIMIT_RECHARGE_BURST", 5),
			BillPayRate:              getenvFloat("RATE_LIMIT_BILLPAY_RATE", 1),
			BillPayBurst:             getenvInt("RATE_LIMIT_BILLPAY_BURST", 5),
			SubmissionLockTTLSeconds: getenvInt("RATE_LIMIT_SUBMISSION_LOCK_TTL_SECONDS", 5),
		},
	}
}

func loadTelemetry() TelemetryConfig {
	protocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = traces
	}
	return TelemetryConfig{
		LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		OtelEnabled:   getenvBool("OTEL_ENABLED", false),
		OtlpEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
		OtlpProtocol:  strings.ToLower(strings.TrimSpace(protocol)),
		SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
	}
}

func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		SuccessRate:         0.95,
		RechargeMinDelay:    500 * time.Millisecond,
		RechargeMaxDelay:    2500 * time.Millisecond,
		BillPayInstantDelay: time.Second,
		BillPayDelayedDelay: 5 * time.Second,
	}
}

func (c SimulationConfig) fromEnv() SimulationConfig {
	c.Seed = getenvInt64("SIM_SEED", c.Seed)
	c.SuccessRate = getenvFloat("SIM_SUCCESS_RATE", c.SuccessRate)
	c.RechargeMinDelay = getenvDuration("SIM_RECHARGE_MIN_DELAY", c.RechargeMinDelay)
	c.RechargeMaxDelay = getenvDuration("SIM_RECHARGE_MAX_DELAY", c.RechargeMaxDelay)
	c.BillPayInstantDelay = getenvDuration("SIM_BILLPAY_INSTANT_DELAY", c.BillPayInstantDelay)
	c.BillPayDelayedDelay = getenvDuration("SIM_BILLPAY_DELAYED_DELAY", c.BillPayDelayedDelay)
	return c.WithDefaults()
}

// WithDefaults replaces out-of-range values with the defaults.
func (c SimulationConfig) WithDefaults() SimulationConfig {
	defaults := DefaultSimulationConfig()
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		c.SuccessRate = defaults.SuccessRate
	}
	if c.RechargeMinDelay < 0 {
		c.RechargeMinDelay = defaults.RechargeMinDelay
	}
	if c.RechargeMaxDelay < c.RechargeMinDelay {
		c.RechargeMinDelay = defaults.RechargeMinDelay
		c.RechargeMaxDelay = defaults.RechargeMaxDelay
	}
	if c.BillPayInstantDelay <= 0 {
		c.BillPayInstantDelay = defaults.BillPayInstantDelay
	}
	if c.BillPayDelayedDelay <= 0 {
		c.BillPayDelayedDelay = defaults.BillPayDelayedDelay
	}
	return c
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go duration strings ("750ms") or bare milliseconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
