package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	catalogservice "github.com/smallbiznis/rechargemock/internal/catalog/service"
	"github.com/smallbiznis/rechargemock/internal/clock"
	"github.com/smallbiznis/rechargemock/internal/config"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	"github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"github.com/smallbiznis/rechargemock/internal/recharge/repository"
	"github.com/smallbiznis/rechargemock/internal/simulation"
	"github.com/smallbiznis/rechargemock/internal/simulation/simtest"
	"github.com/smallbiznis/rechargemock/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   domain.Service
	repo  domain.Repository
	clock *clock.FakeClock
}

func newFixture(t *testing.T, src simulation.Source) fixture {
	t.Helper()
	fake := clock.NewFakeClock(epoch)
	repo := repository.Provide()
	svc := New(Params{
		Log:        zap.NewNop(),
		Clock:      fake,
		Catalog:    catalogservice.New(catalogservice.Params{Catalog: catalogdomain.DefaultCatalog()}),
		Engine:     simulation.NewEngine(config.DefaultSimulationConfig(), src),
		Repo:       repo,
		SimMetrics: obsmetrics.ResetSimulatorMetricsForTest(prometheus.NewRegistry()),
	})
	return fixture{svc: svc, repo: repo, clock: fake}
}

func validInput() validation.RechargeInput {
	return validation.RechargeInput{PhoneNumber: "01712345678", Amount: 100.0, Operator: "GrameenPhone"}
}

func TestSubmitSuccessStoresCompletedTransaction(t *testing.T) {
	// delay draw 0.5 -> 1500ms, outcome draw 0.1 -> success
	f := newFixture(t, simtest.NewSequence([]float64{0.5, 0.1}, nil))

	tx, err := f.svc.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, tx.TransactionID)
	assert.Equal(t, domain.StatusCompleted, tx.Status)
	assert.Equal(t, "Grameenphone", tx.Operator)
	assert.Equal(t, "GP", tx.OperatorCode)
	assert.Equal(t, 2.5, tx.Commission)
	assert.Equal(t, int64(1500), tx.ProcessingTime)
	assert.Nil(t, tx.PackageID)

	after := epoch.Add(1500 * time.Millisecond)
	assert.Equal(t, fmt.Sprintf("EXT%d", after.UnixMilli()), tx.ExternalTransactionID)
	assert.Equal(t, after, tx.CreatedAt)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, f.clock.Sleeps())

	stored, err := f.svc.GetByID(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, tx, stored)
}

func TestSubmitKeepsPackageID(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	in := validInput()
	in.PackageID = "PKG-7"

	tx, err := f.svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, tx.PackageID)
	assert.Equal(t, "PKG-7", *tx.PackageID)
}

func TestSubmitFailureIsNotStored(t *testing.T) {
	f := newFixture(t, simtest.NewSequence([]float64{0, 0.97}, []int{2}))

	_, err := f.svc.Submit(context.Background(), validInput())
	failure, ok := domain.AsFailure(err)
	require.True(t, ok, "expected a simulated failure, got %v", err)
	assert.Equal(t, "OPERATOR_DOWN", failure.Code)
	assert.Equal(t, "Operator service temporarily unavailable", failure.Message)
	assert.Equal(t, fmt.Sprintf("REF%d", epoch.Add(500*time.Millisecond).UnixMilli()), failure.Reference)

	assert.Equal(t, domain.Stats{}, f.svc.Stats(context.Background()))
}

func TestSubmitValidationErrorSkipsDelay(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	in := validInput()
	in.PhoneNumber = "123"

	_, err := f.svc.Submit(context.Background(), in)
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, validation.CodeInvalidPhoneFormat, verr.Code)
	assert.Empty(t, f.clock.Sleeps())
}

func TestSubmitCancelledStoresNothing(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Submit(ctx, validInput())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.svc.Stats(context.Background()).Total)
}

func TestGetByIDUnknown(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	_, err := f.svc.GetByID(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryWindow(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())

	var ids []string
	for range 5 {
		tx, err := f.svc.Submit(context.Background(), validInput())
		require.NoError(t, err)
		ids = append(ids, tx.TransactionID)
	}

	page, err := f.svc.History(context.Background(), domain.HistoryRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, ids[3], page.Transactions[0].TransactionID)
	assert.Equal(t, ids[2], page.Transactions[1].TransactionID)

	page, err = f.svc.History(context.Background(), domain.HistoryRequest{Limit: domain.DefaultHistoryLimit})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 5)
	assert.Equal(t, ids[4], page.Transactions[0].TransactionID)

	page, err = f.svc.History(context.Background(), domain.HistoryRequest{Limit: 10, Offset: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Transactions)
	assert.Equal(t, 5, page.Total)
}

func TestHistoryRejectsNegativeValues(t *testing.T) {
	f := newFixture(t, simtest.AlwaysSucceed())
	_, err := f.svc.History(context.Background(), domain.HistoryRequest{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	_, err = f.svc.History(context.Background(), domain.HistoryRequest{Limit: 1, Offset: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
}

func TestBalance(t *testing.T) {
	f := newFixture(t, simtest.NewSequence(nil, []int{490}))

	bal, err := f.svc.Balance(context.Background(), domain.BalanceRequest{PhoneNumber: "01712345678", Operator: "robi"})
	require.NoError(t, err)
	assert.Equal(t, 500, bal.Balance)
	assert.Equal(t, "BDT", bal.Currency)
	assert.Equal(t, "robi", bal.Operator)
	assert.Equal(t, epoch, bal.LastUpdated)

	_, err = f.svc.Balance(context.Background(), domain.BalanceRequest{PhoneNumber: "01712345678"})
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, validation.CodeMissingRequiredFields, verr.Code)
}
