package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/rechargemock/internal/billpay/domain"
	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"github.com/smallbiznis/rechargemock/internal/clock"
	obslogger "github.com/smallbiznis/rechargemock/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	"github.com/smallbiznis/rechargemock/internal/scheduler"
	"github.com/smallbiznis/rechargemock/internal/simulation"
	"github.com/smallbiznis/rechargemock/internal/validation"
	"github.com/smallbiznis/rechargemock/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const resolveTask = "billpay.resolve"

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Catalog    catalogdomain.Service
	Engine     *simulation.Engine
	Dispatcher scheduler.Dispatcher
	Repo       domain.Repository
	Metrics    *obsmetrics.Metrics          `optional:"true"`
	SimMetrics *obsmetrics.SimulatorMetrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	catalog    catalogdomain.Service
	engine     *simulation.Engine
	dispatcher scheduler.Dispatcher
	repo       domain.Repository
	metrics    *obsmetrics.Metrics
	simMetrics *obsmetrics.SimulatorMetrics
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("billpay.service"),
		clock:      p.Clock,
		catalog:    p.Catalog,
		engine:     p.Engine,
		dispatcher: p.Dispatcher,
		repo:       p.Repo,
		metrics:    p.Metrics,
		simMetrics: p.SimMetrics,
	}
}

// Submit stores the payment as pending and schedules its resolution. The
// caller is acknowledged before the outcome is known.
func (s *Service) Submit(ctx context.Context, in validation.BillPaymentInput) (domain.Transaction, error) {
	req, err := validation.ValidateBillPayment(s.catalog, in)
	if err != nil {
		if verr, ok := validation.AsError(err); ok {
			s.metrics.RecordValidationReject(ctx, "billpay", verr.Code)
		}
		return domain.Transaction{}, err
	}

	fee, total := charges(req.Amount, req.Provider.FeePercentage)
	now := s.clock.Now().UTC()
	tx := domain.Transaction{
		TransactionID: uuid.NewString(),
		ProviderCode:  req.Provider.Code,
		ProviderName:  req.Provider.Name,
		AccountNumber: req.AccountNumber,
		CustomerName:  req.CustomerName,
		Amount:        req.Amount,
		ServiceFee:    fee,
		TotalAmount:   total,
		CustomerPhone: optional(req.CustomerPhone),
		Note:          optional(req.Note),
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}

	s.metrics.RecordBillPayment(ctx, tx.ProviderCode)
	s.simMetrics.IncTransaction(obsmetrics.TransactionKindBillPay, string(tx.Status))

	ctx, _ = correlation.Ensure(ctx, now)
	delay := s.engine.BillPayDelay(req.Provider.Class())
	id := tx.TransactionID
	task, err := s.dispatcher.Schedule(ctx, resolveTask, delay, func(ctx context.Context) {
		s.resolve(ctx, id, delay)
	})
	if err != nil {
		// the record stays pending; it is still queryable
		s.logger(ctx).Error("bill payment resolution not scheduled",
			zap.String("transaction_id", id),
			zap.Error(err),
		)
		return tx, nil
	}

	s.logger(ctx).Info("bill payment accepted",
		zap.String("transaction_id", id),
		zap.String("provider", tx.ProviderCode),
		zap.String("task_id", task.ID.String()),
		zap.Duration("resolve_after", delay),
	)
	return tx, nil
}

// resolve moves a pending payment to its terminal state. Missing or already
// resolved payments are left alone.
func (s *Service) resolve(ctx context.Context, id string, delay time.Duration) {
	resolved, err := s.repo.Update(ctx, id, func(tx *domain.Transaction) error {
		if tx.Status.Terminal() {
			return domain.ErrAlreadyResolved
		}
		now := s.clock.Now().UTC()
		if s.engine.Succeeds() {
			tx.Status = domain.StatusCompleted
			tx.ConfirmationNumber = fmt.Sprintf("%s%d", tx.ProviderCode, now.UnixMilli())
		} else {
			tx.Status = domain.StatusFailed
			tx.ErrorMessage = domain.FailureMessage
		}
		tx.UpdatedAt = now
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyResolved):
		s.logger(ctx).Debug("bill payment resolution skipped",
			zap.String("transaction_id", id),
			zap.String("reason", err.Error()),
		)
		return
	case err != nil:
		s.logger(ctx).Error("bill payment resolution failed",
			zap.String("transaction_id", id),
			zap.Error(err),
		)
		return
	}

	s.metrics.RecordBillResolution(ctx, resolved.ProviderCode, string(resolved.Status))
	s.simMetrics.IncTransaction(obsmetrics.TransactionKindBillPay, string(resolved.Status))
	s.simMetrics.ObserveProcessingDelay(obsmetrics.TransactionKindBillPay, delay)

	fields := []zap.Field{
		zap.String("transaction_id", id),
		zap.String("provider", resolved.ProviderCode),
		zap.String("status", string(resolved.Status)),
	}
	if resolved.Status == domain.StatusFailed {
		s.logger(ctx).Warn("bill payment resolved", fields...)
		return
	}
	s.logger(ctx).Info("bill payment resolved",
		append(fields, zap.String("confirmation_number", resolved.ConfirmationNumber))...)
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

func (s *Service) Verify(ctx context.Context, req domain.VerifyRequest) (domain.Verification, error) {
	provider, err := validation.ValidateAccountLookup(s.catalog, req.ProviderCode, req.AccountNumber)
	if err != nil {
		if verr, ok := validation.AsError(err); ok {
			s.metrics.RecordValidationReject(ctx, "billpay_verify", verr.Code)
		}
		return domain.Verification{}, err
	}
	return domain.Verification{
		ProviderCode:   provider.Code,
		ProviderName:   provider.Name,
		Category:       provider.Category,
		AccountNumber:  strings.TrimSpace(req.AccountNumber),
		MinAmount:      provider.MinAmount,
		MaxAmount:      provider.MaxAmount,
		FeePercentage:  provider.FeePercentage,
		ProcessingTime: provider.ProcessingTime,
		Verified:       true,
	}, nil
}

func (s *Service) Stats(ctx context.Context) domain.Stats {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger(ctx).Warn("bill payment stats unavailable", zap.Error(err))
		return domain.Stats{}
	}
	return stats
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

// charges returns the service fee and the total the customer pays.
// The total is always amount + fee in float64 so the stored record adds up.
func charges(amount, feePercentage float64) (float64, float64) {
	fee := amount * feePercentage / 100
	return fee, amount + fee
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
