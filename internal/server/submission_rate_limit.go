package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rechargemock/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	"github.com/smallbiznis/rechargemock/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	rateLimitReasonSubscriberRate = "subscriber-rate"
	rateLimitReasonInFlight       = "submission-in-flight"
)

// submissionKey holds the body fields that identify who is being charged.
type submissionKey struct {
	PhoneNumber   string `json:"phone_number"`
	ProviderCode  string `json:"provider_code"`
	AccountNumber string `json:"account_number"`
}

// submissionSubject picks the throttled subscriber from a request body and
// checks its bucket. An empty subject skips the limit.
type submissionSubject struct {
	name  string
	key   func(submissionKey) string
	allow func(ctx context.Context, l *ratelimit.SubmissionLimiter, k submissionKey) (*ratelimit.RateLimitResult, error)
}

var (
	rechargeSubject = submissionSubject{
		name: "recharge",
		key: func(k submissionKey) string {
			if k.PhoneNumber == "" {
				return ""
			}
			return "recharge:" + k.PhoneNumber
		},
		allow: func(ctx context.Context, l *ratelimit.SubmissionLimiter, k submissionKey) (*ratelimit.RateLimitResult, error) {
			return l.AllowRecharge(ctx, k.PhoneNumber)
		},
	}
	billPaySubject = submissionSubject{
		name: "billpay",
		key: func(k submissionKey) string {
			if k.ProviderCode == "" || k.AccountNumber == "" {
				return ""
			}
			return "billpay:" + k.ProviderCode + ":" + k.AccountNumber
		},
		allow: func(ctx context.Context, l *ratelimit.SubmissionLimiter, k submissionKey) (*ratelimit.RateLimitResult, error) {
			return l.AllowBillPayment(ctx, k.ProviderCode, k.AccountNumber)
		},
	}
)

func (s *Server) SubmissionRateLimit(subject submissionSubject) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)

		key, err := readSubmissionKey(c)
		if err != nil {
			logger.FromContext(ctx).Warn("submission rate limit read body failed", zap.Error(err))
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		claimSubject := subject.key(key)
		if claimSubject == "" {
			// validation rejects the request downstream
			c.Next()
			return
		}

		result, err := subject.allow(ctx, s.limiter, key)
		if err != nil {
			logger.FromContext(ctx).Warn("submission rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !result.Allowed {
			denySubmission(c, endpoint, rateLimitReasonSubscriberRate, result, s.obsMetrics)
			return
		}

		token, claimed, err := s.limiter.ClaimSubmission(ctx, claimSubject)
		if err != nil {
			logger.FromContext(ctx).Warn("submission claim failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !claimed {
			denySubmission(c, endpoint, rateLimitReasonInFlight, nil, s.obsMetrics)
			return
		}
		defer func() {
			if err := s.limiter.ReleaseSubmission(context.WithoutCancel(ctx), claimSubject, token); err != nil {
				logger.FromContext(ctx).Warn("submission release failed", zap.Error(err))
			}
		}()

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Next()
	}
}

func denySubmission(c *gin.Context, endpoint, reason string, result *ratelimit.RateLimitResult, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("submission rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, reason, metrics)

	c.Header("Retry-After", retryAfterSeconds(result))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func retryAfterSeconds(result *ratelimit.RateLimitResult) string {
	if result == nil || result.RetryAfter <= 0 {
		return "1"
	}
	seconds := int(result.RetryAfter.Seconds())
	if result.RetryAfter.Seconds() > float64(seconds) {
		seconds++
	}
	return strconv.Itoa(max(seconds, 1))
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func readSubmissionKey(c *gin.Context) (submissionKey, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return submissionKey{}, err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return submissionKey{}, nil
	}

	var payload submissionKey
	if err := json.Unmarshal(body, &payload); err != nil {
		return submissionKey{}, nil
	}

	return submissionKey{
		PhoneNumber:   strings.TrimSpace(payload.PhoneNumber),
		ProviderCode:  strings.TrimSpace(payload.ProviderCode),
		AccountNumber: strings.TrimSpace(payload.AccountNumber),
	}, nil
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
