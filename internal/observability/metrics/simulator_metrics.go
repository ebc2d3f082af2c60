package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	TransactionKindRecharge = "recharge"
	TransactionKindBillPay  = "billpay"
)

// SimulatorMetrics captures the simulated processing pipeline: delayed
// resolution tasks and transaction outcomes.
type SimulatorMetrics struct {
	tasksScheduled  *prometheus.CounterVec
	tasksFired      *prometheus.CounterVec
	tasksCancelled  *prometheus.CounterVec
	tasksPending    prometheus.Gauge
	taskLag         prometheus.Observer
	transactions    *prometheus.CounterVec
	processingDelay *prometheus.HistogramVec
}

var (
	simulatorMetricsOnce sync.Once
	simulatorMetrics     *SimulatorMetrics
)

// Simulator returns the singleton simulator metrics registry.
func Simulator() *SimulatorMetrics {
	return SimulatorWithConfig(Config{})
}

// SimulatorWithConfig returns the singleton simulator metrics registry using config labels.
func SimulatorWithConfig(cfg Config) *SimulatorMetrics {
	simulatorMetricsOnce.Do(func() {
		simulatorMetrics = newSimulatorMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return simulatorMetrics
}

// ResetSimulatorMetricsForTest swaps the singleton for one registered on registerer.
func ResetSimulatorMetricsForTest(registerer prometheus.Registerer) *SimulatorMetrics {
	simulatorMetricsOnce = sync.Once{}
	simulatorMetrics = nil
	if registerer == nil {
		return nil
	}
	simulatorMetricsOnce.Do(func() {
		simulatorMetrics = newSimulatorMetrics(registerer, Config{})
	})
	return simulatorMetrics
}

func newSimulatorMetrics(registerer prometheus.Registerer, cfg Config) *SimulatorMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	tasksScheduled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rechargemock_scheduler_tasks_scheduled_total",
		Help:        "Delayed tasks scheduled by name.",
		ConstLabels: constLabels,
	}, []string{"task"})
	tasksFired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rechargemock_scheduler_tasks_fired_total",
		Help:        "Delayed tasks executed by name.",
		ConstLabels: constLabels,
	}, []string{"task"})
	tasksCancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rechargemock_scheduler_tasks_cancelled_total",
		Help:        "Delayed tasks cancelled before running.",
		ConstLabels: constLabels,
	}, []string{"task"})
	tasksPending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "rechargemock_scheduler_tasks_pending",
		Help:        "Delayed tasks waiting to fire.",
		ConstLabels: constLabels,
	})
	taskLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "rechargemock_scheduler_task_lag_seconds",
		Help:        "Delay between a task's due time and its execution.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	})
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rechargemock_transactions_total",
		Help:        "Simulated transactions by kind and status.",
		ConstLabels: constLabels,
	}, []string{"kind", "status"})
	processingDelay := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "rechargemock_processing_delay_seconds",
		Help:        "Simulated processing delay by transaction kind.",
		Buckets:     []float64{0.25, 0.5, 1, 1.5, 2, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"kind"})

	registerer.MustRegister(
		tasksScheduled,
		tasksFired,
		tasksCancelled,
		tasksPending,
		taskLag,
		transactions,
		processingDelay,
	)

	return &SimulatorMetrics{
		tasksScheduled:  tasksScheduled,
		tasksFired:      tasksFired,
		tasksCancelled:  tasksCancelled,
		tasksPending:    tasksPending,
		taskLag:         taskLag,
		transactions:    transactions,
		processingDelay: processingDelay,
	}
}

func (m *SimulatorMetrics) IncTaskScheduled(task string) {
	if m == nil {
		return
	}
	m.tasksScheduled.WithLabelValues(task).Inc()
	m.tasksPending.Inc()
}

// IncTaskFired records a task run and the lag past its due time.
func (m *SimulatorMetrics) IncTaskFired(task string, lag time.Duration) {
	if m == nil {
		return
	}
	m.tasksFired.WithLabelValues(task).Inc()
	m.tasksPending.Dec()
	if lag < 0 {
		lag = 0
	}
	m.taskLag.Observe(lag.Seconds())
}

func (m *SimulatorMetrics) IncTaskCancelled(task string) {
	if m == nil {
		return
	}
	m.tasksCancelled.WithLabelValues(task).Inc()
	m.tasksPending.Dec()
}

// IncTransaction counts a transaction entering status for kind.
func (m *SimulatorMetrics) IncTransaction(kind, status string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(kind, status).Inc()
}

func (m *SimulatorMetrics) ObserveProcessingDelay(kind string, delay time.Duration) {
	if m == nil {
		return
	}
	m.processingDelay.WithLabelValues(kind).Observe(delay.Seconds())
}
