package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/rechargemock/internal/billpay/domain"
	"github.com/smallbiznis/rechargemock/internal/billpay/repository"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	catalogservice "github.com/smallbiznis/rechargemock/internal/catalog/service"
	"github.com/smallbiznis/rechargemock/internal/clock"
	"github.com/smallbiznis/rechargemock/internal/config"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	schedtesting "github.com/smallbiznis/rechargemock/internal/scheduler/testing"
	"github.com/smallbiznis/rechargemock/internal/simulation"
	"github.com/smallbiznis/rechargemock/internal/simulation/simtest"
	"github.com/smallbiznis/rechargemock/internal/validation"
	"github.com/smallbiznis/rechargemock/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc        domain.Service
	clock      *clock.FakeClock
	dispatcher *schedtesting.ManualDispatcher
	logs       *observer.ObservedLogs
}

func newFixture(t *testing.T, src simulation.Source) fixture {
	t.Helper()
	fake := clock.NewFakeClock(epoch)
	dispatcher := schedtesting.NewManualDispatcher(fake)
	core, logs := observer.New(zap.DebugLevel)
	svc := New(Params{
		Log:        zap.New(core),
		Clock:      fake,
		Catalog:    catalogservice.New(catalogservice.Params{Catalog: catalogdomain.DefaultCatalog()}),
		Engine:     simulation.NewEngine(config.DefaultSimulationConfig(), src),
		Dispatcher: dispatcher,
		Repo:       repository.Provide(),
		SimMetrics: obsmetrics.ResetSimulatorMetricsForTest(prometheus.NewRegistry()),
	})
	return fixture{svc: svc, clock: fake, dispatcher: dispatcher, logs: logs}
}

func descoInput() validation.BillPaymentInput {
	return validation.BillPaymentInput{
		ProviderCode:  "DESCO",
		AccountNumber: "ACC-1001",
		CustomerName:  "Rahim",
		Amount:        1000.0,
	}
}

func TestSubmitStoresPendingWithCharges(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())

	tx, err := f.svc.Submit(context.Background(), descoInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Equal(t, 15.0, tx.ServiceFee)
	assert.Equal(t, 1015.0, tx.TotalAmount)
	assert.Equal(t, "DESCO", tx.ProviderName)
	assert.Nil(t, tx.CustomerPhone)
	assert.Nil(t, tx.Note)
	assert.Empty(t, tx.ConfirmationNumber)
	assert.Equal(t, 1, f.dispatcher.Pending())

	stored, err := f.svc.GetByID(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestSubmitTotalsAddUpForEveryProvider(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	fees := map[string]float64{"DESCO": 1.5, "WASA": 1.0, "TITAS": 1.2, "BTCL": 2.0}
	amounts := []float64{100, 109, 218, 436, 999, 150.42, 123.45, 777.77, 1234.56, 9999.99}

	for code, pct := range fees {
		for _, amount := range amounts {
			tx, err := f.svc.Submit(context.Background(), validation.BillPaymentInput{
				ProviderCode:  code,
				AccountNumber: "ACC-1",
				CustomerName:  "Rahim",
				Amount:        amount,
			})
			require.NoError(t, err, "%s %v", code, amount)

			assert.Equal(t, amount+amount*pct/100, tx.TotalAmount, "%s %v", code, amount)
			assert.Equal(t, tx.Amount+tx.ServiceFee, tx.TotalAmount, "%s %v", code, amount)
		}
	}
}

func TestInstantProviderCompletesAfterOneSecond(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())

	tx, err := f.svc.Submit(context.Background(), descoInput())
	require.NoError(t, err)

	assert.Equal(t, 0, f.dispatcher.Advance(999*time.Millisecond))
	got, _ := f.svc.GetByID(context.Background(), tx.TransactionID)
	assert.Equal(t, domain.StatusPending, got.Status)

	assert.Equal(t, 1, f.dispatcher.Advance(time.Millisecond))
	got, err = f.svc.GetByID(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	resolvedAt := epoch.Add(time.Second)
	assert.Equal(t, fmt.Sprintf("DESCO%d", resolvedAt.UnixMilli()), got.ConfirmationNumber)
	assert.Equal(t, resolvedAt, got.UpdatedAt)
	assert.Equal(t, epoch, got.CreatedAt)
	assert.Empty(t, got.ErrorMessage)
}

func TestDelayedProviderFails(t *testing.T) {
	f := newFixture(t, simtest.AlwaysFail())

	in := validation.BillPaymentInput{
		ProviderCode:  "WASA",
		AccountNumber: "W-77",
		CustomerName:  "Karim",
		Amount:        "200",
		CustomerPhone: "01812345678",
		Note:          "april",
	}
	tx, err := f.svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, tx.CustomerPhone)
	assert.Equal(t, "01812345678", *tx.CustomerPhone)
	assert.Equal(t, 2.0, tx.ServiceFee)
	assert.Equal(t, 202.0, tx.TotalAmount)

	assert.Equal(t, 0, f.dispatcher.Advance(4*time.Second))
	assert.Equal(t, 1, f.dispatcher.Advance(time.Second))

	got, err := f.svc.GetByID(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, domain.FailureMessage, got.ErrorMessage)
	assert.Empty(t, got.ConfirmationNumber)
}

func TestResolutionHappensOnce(t *testing.T) {
	// first outcome fails, any later draw would succeed
	f := newFixture(t, simtest.NewSequence([]float64{0.99, 0}, nil))

	tx, err := f.svc.Submit(context.Background(), descoInput())
	require.NoError(t, err)
	f.dispatcher.RunAll()

	svc := f.svc.(*Service)
	svc.resolve(context.Background(), tx.TransactionID, time.Second)

	got, _ := f.svc.GetByID(context.Background(), tx.TransactionID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, 1, f.logs.FilterMessage("bill payment resolution skipped").Len())
}

func TestResolveMissingIsNoop(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	svc := f.svc.(*Service)
	svc.resolve(context.Background(), "missing", time.Second)
	assert.Equal(t, domain.Stats{}, f.svc.Stats(context.Background()))
}

func TestSubmitCarriesCorrelationToResolution(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	ctx := correlation.WithID(context.Background(), "corr-1")

	_, err := f.svc.Submit(ctx, descoInput())
	require.NoError(t, err)
	f.dispatcher.RunAll()

	entries := f.logs.FilterMessage("bill payment resolved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "corr-1", entries[0].ContextMap()["correlation_id"])
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())

	in := descoInput()
	in.Amount = 10.0
	_, err := f.svc.Submit(context.Background(), in)
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, validation.CodeInvalidAmount, verr.Code)
	assert.Equal(t, "Amount must be between 50 and 50000 BDT for DESCO", verr.Message)
	assert.Equal(t, 0, f.dispatcher.Pending())
}

func TestStatsCountsEveryStatus(t *testing.T) {
	f := newFixture(t, simtest.NewSequence([]float64{0, 0.99}, nil))

	for range 3 {
		_, err := f.svc.Submit(context.Background(), descoInput())
		require.NoError(t, err)
	}
	f.dispatcher.Advance(time.Second)

	// draws: 0 then 0.99 repeated
	assert.Equal(t, domain.Stats{Total: 3, Completed: 1, Failed: 2}, f.svc.Stats(context.Background()))
}

func TestVerify(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())

	v, err := f.svc.Verify(context.Background(), domain.VerifyRequest{ProviderCode: "BTCL", AccountNumber: " 88-1 "})
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, "88-1", v.AccountNumber)
	assert.Equal(t, 100.0, v.MinAmount)
	assert.Equal(t, 10000.0, v.MaxAmount)
	assert.Equal(t, "Instant", v.ProcessingTime)

	_, err = f.svc.Verify(context.Background(), domain.VerifyRequest{ProviderCode: "NOPE", AccountNumber: "1"})
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, validation.CodeInvalidProvider, verr.Code)
}
