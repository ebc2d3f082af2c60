package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var (
	ErrInvalidTTL = errors.New("in-flight ttl must be positive")
	ErrClaimLost  = errors.New("in-flight claim expired before release")
)

// Both scripts run atomically on the server; the holder token makes release
// a no-op for anyone whose claim already expired.
var (
	claimScript = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
  return 1
end
return 0
`)
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)
)

// InFlightGuard marks a subscriber as having a submission in progress. A
// recharge holds its claim through the simulated processing delay, so a
// retry sent meanwhile is turned away instead of charging twice.
type InFlightGuard struct {
	client redis.Scripter
}

func NewInFlightGuard(client redis.Scripter) *InFlightGuard {
	if client == nil {
		return nil
	}
	return &InFlightGuard{client: client}
}

// Claim returns the holder token and true when key was free.
func (g *InFlightGuard) Claim(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if g == nil || g.client == nil {
		return "", false, ErrNotConfigured
	}
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}

	token := uuid.NewString()
	claimed, err := claimScript.Run(ctx, g.client, []string{key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return "", false, err
	}
	return token, claimed == 1, nil
}

// Release drops the claim when token still holds it and reports whether it did.
func (g *InFlightGuard) Release(ctx context.Context, key, token string) (bool, error) {
	if g == nil || g.client == nil || key == "" || token == "" {
		return false, nil
	}
	released, err := releaseScript.Run(ctx, g.client, []string{key}, token).Int()
	if err != nil {
		return false, err
	}
	return released == 1, nil
}
