// Package correlation ties a request to the background work it starts, such
// as a bill payment resolution that fires seconds after the response.
package correlation

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// Header carries a caller supplied correlation id in and out of the API.
const Header = "X-Correlation-Id"

const maxLength = 128

type ctxKey struct{}

// FromContext returns the correlation id on ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithID stores id on ctx. An empty id leaves ctx unchanged.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// Ensure returns ctx carrying a correlation id, minting a ULID stamped with
// now when ctx has none.
func Ensure(ctx context.Context, now time.Time) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewID(now)
	return WithID(ctx, id), id
}

func NewID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

// GinMiddleware adopts the caller's correlation id when it is usable and
// echoes the effective id on the response.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" || len(id) > maxLength {
			id = NewID(time.Now())
		}
		c.Request = c.Request.WithContext(WithID(c.Request.Context(), id))
		c.Header(Header, id)
		c.Next()
	}
}
