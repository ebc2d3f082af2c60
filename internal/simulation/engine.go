package simulation

import (
	"time"

	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"github.com/smallbiznis/rechargemock/internal/config"
	"go.uber.org/fx"
)

// FailureReason is a simulated operator-side recharge failure.
type FailureReason struct {
	Code    string
	Message string
}

var failureReasons = []FailureReason{
	{Code: "INSUFFICIENT_BALANCE", Message: "Insufficient balance in operator account"},
	{Code: "NETWORK_ERROR", Message: "Network connectivity issue with operator"},
	{Code: "OPERATOR_DOWN", Message: "Operator service temporarily unavailable"},
	{Code: "INVALID_NUMBER", Message: "Phone number not found in operator network"},
}

// FailureReasons lists the recharge failures in draw order.
func FailureReasons() []FailureReason {
	out := make([]FailureReason, len(failureReasons))
	copy(out, failureReasons)
	return out
}

const (
	balanceMin  = 10
	balanceSpan = 1000
)

type Params struct {
	fx.In

	Tuning *config.SimulationHolder
	Source Source
}

// Engine makes every random decision of the simulated gateway. Tuning is
// read on every draw so reloaded values apply to the next request.
type Engine struct {
	tuning *config.SimulationHolder
	src    Source
}

func New(p Params) *Engine {
	return &Engine{tuning: p.Tuning, src: p.Source}
}

func NewEngine(cfg config.SimulationConfig, src Source) *Engine {
	if src == nil {
		src = NewSource(cfg.Seed)
	}
	return &Engine{tuning: config.NewStaticSimulationHolder(cfg), src: src}
}

// RechargeDelay draws uniformly from [RechargeMinDelay, RechargeMaxDelay).
func (e *Engine) RechargeDelay() time.Duration {
	cfg := e.tuning.Get()
	span := cfg.RechargeMaxDelay - cfg.RechargeMinDelay
	return cfg.RechargeMinDelay + time.Duration(e.src.Float64()*float64(span))
}

// BillPayDelay is fixed per processing class.
func (e *Engine) BillPayDelay(class catalogdomain.ProcessingClass) time.Duration {
	cfg := e.tuning.Get()
	if class == catalogdomain.ProcessingInstant {
		return cfg.BillPayInstantDelay
	}
	return cfg.BillPayDelayedDelay
}

// Succeeds draws one outcome with the configured success probability.
func (e *Engine) Succeeds() bool {
	return e.src.Float64() < e.tuning.Get().SuccessRate
}

// PickFailure chooses one of the recharge failure reasons uniformly.
func (e *Engine) PickFailure() FailureReason {
	return failureReasons[e.src.Intn(len(failureReasons))]
}

// Balance draws a mock airtime balance in [10, 1010).
func (e *Engine) Balance() int {
	return balanceMin + e.src.Intn(balanceSpan)
}

func provideSource(cfg config.Config) Source {
	return NewSource(cfg.Simulation.Seed)
}

var Module = fx.Module("simulation",
	fx.Provide(config.NewSimulationHolder),
	fx.Provide(provideSource),
	fx.Provide(New),
)
