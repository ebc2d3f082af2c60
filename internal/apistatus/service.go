// Package apistatus reports server health and aggregate transaction stats.
package apistatus

import (
	"context"
	"fmt"
	"time"

	billpaydomain "github.com/smallbiznis/rechargemock/internal/billpay/domain"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"github.com/smallbiznis/rechargemock/internal/clock"
	"github.com/smallbiznis/rechargemock/internal/config"
	rechargedomain "github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"go.uber.org/fx"
)

const (
	ServerOnline  = "online"
	HealthHealthy = "healthy"
)

type Status struct {
	ServerStatus              string    `json:"server_status"`
	APIVersion                string    `json:"api_version"`
	Uptime                    float64   `json:"uptime"`
	TotalRechargeTransactions int       `json:"total_recharge_transactions"`
	TotalBillPayTransactions  int       `json:"total_billpay_transactions"`
	RechargeSuccessRate       string    `json:"recharge_success_rate"`
	BillPaySuccessRate        string    `json:"billpay_success_rate"`
	SupportedOperators        []string  `json:"supported_operators"`
	SupportedBillProviders    []string  `json:"supported_bill_providers"`
	ServerTime                time.Time `json:"server_time"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
	Version   string    `json:"version"`
}

type Params struct {
	fx.In

	Config   config.Config
	Clock    clock.Clock
	Catalog  catalogdomain.Service
	Recharge rechargedomain.Service
	BillPay  billpaydomain.Service
}

type Service struct {
	version   string
	clock     clock.Clock
	catalog   catalogdomain.Service
	recharge  rechargedomain.Service
	billpay   billpaydomain.Service
	startedAt time.Time
}

func New(p Params) *Service {
	return &Service{
		version:   p.Config.AppVersion,
		clock:     p.Clock,
		catalog:   p.Catalog,
		recharge:  p.Recharge,
		billpay:   p.BillPay,
		startedAt: p.Clock.Now(),
	}
}

func (s *Service) Status(ctx context.Context) Status {
	recharge := s.recharge.Stats(ctx)
	billpay := s.billpay.Stats(ctx)
	now := s.clock.Now()
	return Status{
		ServerStatus:              ServerOnline,
		APIVersion:                s.version,
		Uptime:                    s.uptime(now),
		TotalRechargeTransactions: recharge.Total,
		TotalBillPayTransactions:  billpay.Total,
		RechargeSuccessRate:       SuccessRate(recharge.Completed, recharge.Total),
		BillPaySuccessRate:        SuccessRate(billpay.Completed, billpay.Total),
		SupportedOperators:        s.catalog.OperatorKeys(),
		SupportedBillProviders:    s.catalog.ProviderCodes(),
		ServerTime:                now.UTC(),
	}
}

func (s *Service) Health() Health {
	now := s.clock.Now()
	return Health{
		Status:    HealthHealthy,
		Timestamp: now.UTC(),
		Uptime:    s.uptime(now),
		Version:   s.version,
	}
}

// uptime is in seconds.
func (s *Service) uptime(now time.Time) float64 {
	return now.Sub(s.startedAt).Seconds()
}

// SuccessRate formats completed/total as a percentage. An empty store
// reports "100%".
func SuccessRate(completed, total int) string {
	if total <= 0 {
		return "100%"
	}
	return fmt.Sprintf("%.2f%%", float64(completed)/float64(total)*100)
}

var Module = fx.Module("apistatus",
	fx.Provide(New),
)
