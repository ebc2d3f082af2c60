package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rechargemock/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyRechargePhone   = "rechargemock:recharge:phone:%s"
	keyBillPayAccount  = "rechargemock:billpay:account:%s:%s"
	keySubmissionLock  = "rechargemock:submission:lock:%s"
	defaultLockTTLSecs = 5
)

// SubmissionLimiter throttles recharge and bill payment submissions per
// subscriber. A nil limiter allows everything.
type SubmissionLimiter struct {
	client   *redis.Client
	bucket   *TokenBucket
	inflight *InFlightGuard

	rechargeRate  float64
	rechargeBurst int
	billPayRate   float64
	billPayBurst  int
	lockTTL       time.Duration
}

func NewSubmissionLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*SubmissionLimiter, error) {
	limiter, err := newSubmissionLimiter(cfg.RateLimit)
	if err != nil || limiter == nil {
		return limiter, err
	}

	log.Named("ratelimit").Info("submission rate limit enabled",
		zap.String("redis_addr", cfg.RateLimit.RedisAddr),
		zap.Float64("recharge_rate", limiter.rechargeRate),
		zap.Int("recharge_burst", limiter.rechargeBurst),
		zap.Float64("billpay_rate", limiter.billPayRate),
		zap.Int("billpay_burst", limiter.billPayBurst),
	)
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return limiter.client.Close()
			},
		})
	}
	return limiter, nil
}

func newSubmissionLimiter(limitCfg config.RateLimitConfig) (*SubmissionLimiter, error) {
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.RechargeRate <= 0 || limitCfg.RechargeBurst <= 0 {
		return nil, errors.New("recharge rate limit must be positive")
	}
	if limitCfg.BillPayRate <= 0 || limitCfg.BillPayBurst <= 0 {
		return nil, errors.New("bill payment rate limit must be positive")
	}
	lockTTL := limitCfg.SubmissionLockTTLSeconds
	if lockTTL <= 0 {
		lockTTL = defaultLockTTLSecs
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &SubmissionLimiter{
		client:        client,
		bucket:        NewTokenBucket(client),
		inflight:      NewInFlightGuard(client),
		rechargeRate:  limitCfg.RechargeRate,
		rechargeBurst: limitCfg.RechargeBurst,
		billPayRate:   limitCfg.BillPayRate,
		billPayBurst:  limitCfg.BillPayBurst,
		lockTTL:       time.Duration(lockTTL) * time.Second,
	}, nil
}

func (l *SubmissionLimiter) Enabled() bool {
	return l != nil && l.client != nil
}

func (l *SubmissionLimiter) AllowRecharge(ctx context.Context, phoneNumber string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, RechargeKey(phoneNumber), l.rechargeRate, l.rechargeBurst)
}

func (l *SubmissionLimiter) AllowBillPayment(ctx context.Context, providerCode, accountNumber string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, BillPayKey(providerCode, accountNumber), l.billPayRate, l.billPayBurst)
}

// ClaimSubmission keeps a second submission for the same subscriber out
// while one is in flight.
func (l *SubmissionLimiter) ClaimSubmission(ctx context.Context, subject string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.inflight.Claim(ctx, LockKey(subject), l.lockTTL)
}

// ReleaseSubmission returns ErrClaimLost when the claim expired while the
// submission was still being processed.
func (l *SubmissionLimiter) ReleaseSubmission(ctx context.Context, subject, token string) error {
	if !l.Enabled() || token == "" {
		return nil
	}
	released, err := l.inflight.Release(ctx, LockKey(subject), token)
	if err != nil {
		return err
	}
	if !released {
		return ErrClaimLost
	}
	return nil
}

func RechargeKey(phoneNumber string) string {
	return fmt.Sprintf(keyRechargePhone, strings.TrimSpace(phoneNumber))
}

func BillPayKey(providerCode, accountNumber string) string {
	return fmt.Sprintf(keyBillPayAccount, strings.TrimSpace(providerCode), strings.TrimSpace(accountNumber))
}

func LockKey(subject string) string {
	return fmt.Sprintf(keySubmissionLock, strings.TrimSpace(subject))
}
