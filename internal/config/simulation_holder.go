package config

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrInvalidSuccessRate = errors.New("simulation.success_rate must be within [0, 1]")
	ErrInvalidDelayRange  = errors.New("simulation recharge delays must satisfy 0 <= min <= max")
	ErrInvalidBillPay     = errors.New("simulation bill payment delays must be positive")
)

// SimulationHolder serves the current simulation tuning. Values read from
// simulation.yml override the environment and are reloaded when the file
// changes; the seed is fixed at startup.
type SimulationHolder struct {
	current atomic.Value // holds SimulationConfig
}

func NewStaticSimulationHolder(cfg SimulationConfig) *SimulationHolder {
	h := &SimulationHolder{}
	h.current.Store(cfg.WithDefaults())
	return h
}

// NewSimulationHolder loads SIMULATION_FILE, or simulation.yml from the
// search paths. An explicit file must exist.
func NewSimulationHolder(cfg Config, log *zap.Logger) (*SimulationHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.simulation")
	base := cfg.Simulation.WithDefaults()
	holder := NewStaticSimulationHolder(base)

	v := viper.New()
	if cfg.SimulationFile != "" {
		v.SetConfigFile(cfg.SimulationFile)
	} else {
		v.SetConfigName("simulation")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/rechargemock")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return holder, nil
		}
		return nil, fmt.Errorf("read simulation config: %w", err)
	}

	loaded, err := decodeSimulation(v, base)
	if err != nil {
		return nil, err
	}
	holder.current.Store(loaded)
	log.Info("simulation config loaded", zap.String("file", v.ConfigFileUsed()))

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeSimulation(v, base)
		if err != nil {
			log.Warn("simulation config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("simulation config reloaded",
			zap.String("file", e.Name),
			zap.Float64("success_rate", updated.SuccessRate),
		)
	})
	v.WatchConfig()

	return holder, nil
}

func (h *SimulationHolder) Get() SimulationConfig {
	return h.current.Load().(SimulationConfig)
}

// decodeSimulation overlays the file's simulation section on base.
func decodeSimulation(v *viper.Viper, base SimulationConfig) (SimulationConfig, error) {
	cfg := base
	if err := v.UnmarshalKey("simulation", &cfg); err != nil {
		return SimulationConfig{}, fmt.Errorf("decode simulation config: %w", err)
	}
	cfg.Seed = base.Seed
	if err := validateSimulation(cfg); err != nil {
		return SimulationConfig{}, err
	}
	return cfg, nil
}

func validateSimulation(cfg SimulationConfig) error {
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 {
		return ErrInvalidSuccessRate
	}
	if cfg.RechargeMinDelay < 0 || cfg.RechargeMaxDelay < cfg.RechargeMinDelay {
		return ErrInvalidDelayRange
	}
	if cfg.BillPayInstantDelay <= 0 || cfg.BillPayDelayedDelay <= 0 {
		return ErrInvalidBillPay
	}
	return nil
}
