package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"github.com/smallbiznis/rechargemock/internal/clock"
	obslogger "github.com/smallbiznis/rechargemock/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	"github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"github.com/smallbiznis/rechargemock/internal/simulation"
	"github.com/smallbiznis/rechargemock/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Catalog    catalogdomain.Service
	Engine     *simulation.Engine
	Repo       domain.Repository
	Metrics    *obsmetrics.Metrics          `optional:"true"`
	SimMetrics *obsmetrics.SimulatorMetrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	catalog    catalogdomain.Service
	engine     *simulation.Engine
	repo       domain.Repository
	metrics    *obsmetrics.Metrics
	simMetrics *obsmetrics.SimulatorMetrics
}

var hundred = decimal.NewFromInt(100)

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("recharge.service"),
		clock:      p.Clock,
		catalog:    p.Catalog,
		engine:     p.Engine,
		repo:       p.Repo,
		metrics:    p.Metrics,
		simMetrics: p.SimMetrics,
	}
}

// Submit validates the request, holds it for the simulated processing delay
// and then draws the outcome. Only completed recharges are stored.
func (s *Service) Submit(ctx context.Context, in validation.RechargeInput) (domain.Transaction, error) {
	req, err := validation.ValidateRecharge(s.catalog, in)
	if err != nil {
		if verr, ok := validation.AsError(err); ok {
			s.metrics.RecordValidationReject(ctx, "recharge", verr.Code)
		}
		return domain.Transaction{}, err
	}

	delay := s.engine.RechargeDelay()
	if err := s.clock.Sleep(ctx, delay); err != nil {
		s.logger(ctx).Info("recharge abandoned",
			zap.String("operator", req.Operator.Code),
			zap.Error(err),
		)
		return domain.Transaction{}, fmt.Errorf("recharge processing: %w", err)
	}
	s.simMetrics.ObserveProcessingDelay(obsmetrics.TransactionKindRecharge, delay)

	now := s.clock.Now().UTC()
	if !s.engine.Succeeds() {
		reason := s.engine.PickFailure()
		failure := &domain.FailureError{
			Code:      reason.Code,
			Message:   reason.Message,
			Reference: fmt.Sprintf("REF%d", now.UnixMilli()),
		}
		s.metrics.RecordRechargeOutcome(ctx, req.Operator.Code, string(domain.StatusFailed), reason.Code)
		s.simMetrics.IncTransaction(obsmetrics.TransactionKindRecharge, string(domain.StatusFailed))
		s.logger(ctx).Info("recharge failed",
			zap.String("operator", req.Operator.Code),
			zap.String("error_code", reason.Code),
			zap.String("transaction_reference", failure.Reference),
		)
		return domain.Transaction{}, failure
	}

	tx := domain.Transaction{
		TransactionID:         uuid.NewString(),
		ExternalTransactionID: fmt.Sprintf("EXT%d", now.UnixMilli()),
		PhoneNumber:           req.PhoneNumber,
		Amount:                req.Amount,
		Operator:              req.Operator.Name,
		OperatorCode:          req.Operator.Code,
		Status:                domain.StatusCompleted,
		Commission:            commission(req.Amount, req.Operator.Commission),
		CreatedAt:             now,
		UpdatedAt:             now,
		ProcessingTime:        delay.Round(time.Millisecond).Milliseconds(),
	}
	if req.PackageID != "" {
		pkg := req.PackageID
		tx.PackageID = &pkg
	}

	if err := s.repo.Insert(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}

	s.metrics.RecordRechargeOutcome(ctx, tx.OperatorCode, string(tx.Status), "")
	s.simMetrics.IncTransaction(obsmetrics.TransactionKindRecharge, string(tx.Status))
	s.logger(ctx).Info("recharge completed",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("operator", tx.OperatorCode),
		zap.Int64("processing_time_ms", tx.ProcessingTime),
	)
	return tx, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Transaction{}, domain.ErrNotFound
	}
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return *tx, nil
}

// History pages backwards from the newest record: offset skips the most
// recent records and the page is returned newest first.
func (s *Service) History(ctx context.Context, req domain.HistoryRequest) (domain.HistoryPage, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return domain.HistoryPage{}, domain.ErrInvalidPagination
	}

	items, total, err := s.repo.Recent(ctx, req.Offset, req.Limit)
	if err != nil {
		return domain.HistoryPage{}, err
	}

	return domain.HistoryPage{
		Transactions: items,
		Total:        total,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}, nil
}

func (s *Service) Balance(ctx context.Context, req domain.BalanceRequest) (domain.Balance, error) {
	if err := validation.ValidateBalance(req.PhoneNumber, req.Operator); err != nil {
		if verr, ok := validation.AsError(err); ok {
			s.metrics.RecordValidationReject(ctx, "balance", verr.Code)
		}
		return domain.Balance{}, err
	}
	return domain.Balance{
		PhoneNumber: req.PhoneNumber,
		Operator:    req.Operator,
		Balance:     s.engine.Balance(),
		Currency:    domain.Currency,
		LastUpdated: s.clock.Now().UTC(),
	}, nil
}

func (s *Service) Stats(ctx context.Context) domain.Stats {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger(ctx).Warn("recharge stats unavailable", zap.Error(err))
		return domain.Stats{}
	}
	return stats
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func commission(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Div(hundred).InexactFloat64()
}
