package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/rechargemock/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewSubmissionLimiter(nil, config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	res, err := limiter.AllowRecharge(context.Background(), "01712345678")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.AllowBillPayment(context.Background(), "DESCO", "ACC-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := limiter.ClaimSubmission(context.Background(), "01712345678")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, limiter.ReleaseSubmission(context.Background(), "01712345678", token))
}

func TestNewSubmissionLimiterValidatesConfig(t *testing.T) {
	valid := config.RateLimitConfig{
		Enabled:       true,
		RedisAddr:     "localhost:6379",
		RechargeRate:  1,
		RechargeBurst: 5,
		BillPayRate:   1,
		BillPayBurst:  5,
	}

	limiter, err := newSubmissionLimiter(valid)
	require.NoError(t, err)
	require.True(t, limiter.Enabled())
	assert.Equal(t, 5*time.Second, limiter.lockTTL)
	t.Cleanup(func() { _ = limiter.client.Close() })

	noAddr := valid
	noAddr.RedisAddr = " "
	_, err = newSubmissionLimiter(noAddr)
	assert.Error(t, err)

	badRecharge := valid
	badRecharge.RechargeBurst = 0
	_, err = newSubmissionLimiter(badRecharge)
	assert.Error(t, err)

	badBillPay := valid
	badBillPay.BillPayRate = -1
	_, err = newSubmissionLimiter(badBillPay)
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "rechargemock:recharge:phone:01712345678", RechargeKey(" 01712345678 "))
	assert.Equal(t, "rechargemock:billpay:account:DESCO:ACC-1", BillPayKey("DESCO", "ACC-1"))
	assert.Equal(t, "rechargemock:submission:lock:x", LockKey("x"))
}

func TestTokenBucketRequiresClient(t *testing.T) {
	var bucket *TokenBucket
	res, err := bucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, res.Allowed)
	assert.Nil(t, NewTokenBucket(nil))
}

func TestParseResult(t *testing.T) {
	res, err := parseResult([]any{int64(1), "3.5", int64(1700000000000)}, 2, 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, 5, res.Limit)
	assert.Zero(t, res.RetryAfter)

	res, err = parseResult([]any{int64(0), "0.5", int64(1700000000000)}, 2, 5)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 250*time.Millisecond, res.RetryAfter)
	assert.Equal(t, time.UnixMilli(1700000000000).Add(250*time.Millisecond), res.ResetTime)

	_, err = parseResult([]any{int64(1)}, 1, 1)
	assert.Error(t, err)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, defaultBucketTTL(1, 5))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
}

func TestInFlightGuardRequiresClient(t *testing.T) {
	var guard *InFlightGuard
	_, ok, err := guard.Claim(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, ok)

	released, err := guard.Release(context.Background(), "k", "t")
	assert.NoError(t, err)
	assert.False(t, released)
	assert.Nil(t, NewInFlightGuard(nil))
}
