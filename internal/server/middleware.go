package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/smallbiznis/rechargemock/pkg/telemetry/correlation"
)

const contextTransactionIDKey = "transaction_id"

var (
	corsAllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsAllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id", correlation.Header}
)

// CORS applies go-chi/cors to gin requests and answers every OPTIONS request
// with 204. An empty list or "*" allows every origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   corsAllowMethods,
		AllowedHeaders:   corsAllowHeaders,
		ExposedHeaders:   []string{correlation.Header},
		AllowCredentials: false,
		MaxAge:           300,
		// Passthrough to the no-op handler below so go-chi/cors only sets
		// headers; the 204 for OPTIONS is written by this middleware.
		OptionsPassthrough: true,
	}).Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// setTransactionID exposes the transaction id to the request logger.
func setTransactionID(c *gin.Context, id string) {
	if id = strings.TrimSpace(id); id != "" {
		c.Set(contextTransactionIDKey, id)
	}
}
