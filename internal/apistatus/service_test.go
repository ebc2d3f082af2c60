package apistatus

import (
	"context"
	"testing"
	"time"

	billpaydomain "github.com/smallbiznis/rechargemock/internal/billpay/domain"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	catalogservice "github.com/smallbiznis/rechargemock/internal/catalog/service"
	"github.com/smallbiznis/rechargemock/internal/clock"
	"github.com/smallbiznis/rechargemock/internal/config"
	rechargedomain "github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRecharge struct {
	rechargedomain.Service
	mock.Mock
}

func (m *MockRecharge) Stats(ctx context.Context) rechargedomain.Stats {
	args := m.Called(ctx)
	return args.Get(0).(rechargedomain.Stats)
}

type MockBillPay struct {
	billpaydomain.Service
	mock.Mock
}

func (m *MockBillPay) Stats(ctx context.Context) billpaydomain.Stats {
	args := m.Called(ctx)
	return args.Get(0).(billpaydomain.Stats)
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, "100%", SuccessRate(0, 0))
	assert.Equal(t, "100.00%", SuccessRate(4, 4))
	assert.Equal(t, "66.67%", SuccessRate(2, 3))
	assert.Equal(t, "0.00%", SuccessRate(0, 2))
}

func TestStatus(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	recharge := new(MockRecharge)
	recharge.On("Stats", mock.Anything).Return(rechargedomain.Stats{Total: 4, Completed: 4})
	billpay := new(MockBillPay)
	billpay.On("Stats", mock.Anything).Return(billpaydomain.Stats{Total: 3, Pending: 1, Completed: 1, Failed: 1})

	svc := New(Params{
		Config:   config.Config{AppVersion: "2.0.0"},
		Clock:    fake,
		Catalog:  catalogservice.New(catalogservice.Params{Catalog: catalogdomain.DefaultCatalog()}),
		Recharge: recharge,
		BillPay:  billpay,
	})
	fake.Advance(90 * time.Second)

	status := svc.Status(context.Background())
	assert.Equal(t, "online", status.ServerStatus)
	assert.Equal(t, "2.0.0", status.APIVersion)
	assert.Equal(t, 90.0, status.Uptime)
	assert.Equal(t, 4, status.TotalRechargeTransactions)
	assert.Equal(t, 3, status.TotalBillPayTransactions)
	assert.Equal(t, "100.00%", status.RechargeSuccessRate)
	assert.Equal(t, "33.33%", status.BillPaySuccessRate)
	assert.ElementsMatch(t, []string{"grameenphone", "robi", "banglalink", "airtel", "teletalk"}, status.SupportedOperators)
	assert.Equal(t, []string{"DESCO", "WASA", "TITAS", "BTCL"}, status.SupportedBillProviders)
	assert.Equal(t, start.Add(90*time.Second), status.ServerTime)

	recharge.AssertExpectations(t)
	billpay.AssertExpectations(t)

	health := svc.Health()
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "2.0.0", health.Version)
	assert.Equal(t, 90.0, health.Uptime)
}
