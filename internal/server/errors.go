package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billpaydomain "github.com/smallbiznis/rechargemock/internal/billpay/domain"
	obsmiddleware "github.com/smallbiznis/rechargemock/internal/observability/logger"
	rechargedomain "github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"github.com/smallbiznis/rechargemock/internal/validation"
	"go.uber.org/zap"
)

const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidPagination   = "INVALID_PAGINATION"
	CodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	CodeEndpointNotFound    = "ENDPOINT_NOT_FOUND"
	CodeRateLimited         = "RATE_LIMITED"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

type errorResponse struct {
	Success              bool     `json:"success"`
	Message              string   `json:"message"`
	ErrorCode            string   `json:"error_code"`
	SupportedOperators   []string `json:"supported_operators,omitempty"`
	TransactionReference string   `json:"transaction_reference,omitempty"`
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrEndpointNotFound   = errors.New("endpoint_not_found")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrInternal           = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func recoverWithInternalError(c *gin.Context, recovered any) {
	obsmiddleware.FromContext(c.Request.Context()).Error("panic recovered",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
	)
	_, payload := mapError(ErrInternal)
	c.AbortWithStatusJSON(http.StatusInternalServerError, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, internalErrorResponse()
	}

	if vErr, ok := validation.AsError(err); ok {
		return http.StatusBadRequest, errorResponse{
			Message:            vErr.Message,
			ErrorCode:          vErr.Code,
			SupportedOperators: vErr.SupportedOperators,
		}
	}

	if failure, ok := rechargedomain.AsFailure(err); ok {
		return http.StatusBadRequest, errorResponse{
			Message:              failure.Message,
			ErrorCode:            failure.Code,
			TransactionReference: failure.Reference,
		}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorResponse{
			Message:   "Invalid request body",
			ErrorCode: CodeInvalidRequest,
		}
	case errors.Is(err, rechargedomain.ErrInvalidPagination):
		return http.StatusBadRequest, errorResponse{
			Message:   "limit and offset must be non-negative integers",
			ErrorCode: CodeInvalidPagination,
		}
	case isTransactionNotFound(err):
		return http.StatusNotFound, errorResponse{
			Message:   "Transaction not found",
			ErrorCode: CodeTransactionNotFound,
		}
	case errors.Is(err, ErrEndpointNotFound):
		return http.StatusNotFound, errorResponse{
			Message:   "Endpoint not found",
			ErrorCode: CodeEndpointNotFound,
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{
			Message:   "Too many requests",
			ErrorCode: CodeRateLimited,
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorResponse{
			Message:   "Service unavailable",
			ErrorCode: CodeServiceUnavailable,
		}
	default:
		return http.StatusInternalServerError, internalErrorResponse()
	}
}

func internalErrorResponse() errorResponse {
	return errorResponse{
		Message:   "Internal server error",
		ErrorCode: CodeInternalError,
	}
}

func isTransactionNotFound(err error) bool {
	return errors.Is(err, rechargedomain.ErrNotFound) ||
		errors.Is(err, billpaydomain.ErrNotFound)
}

// classifyErrorForLog returns the error type and code logged for a request.
func classifyErrorForLog(err error) (string, string) {
	if vErr, ok := validation.AsError(err); ok {
		return "validation_error", vErr.Code
	}
	if failure, ok := rechargedomain.AsFailure(err); ok {
		return obsmiddleware.ErrorTypeSimulatedFailure, failure.Code
	}
	status, payload := mapError(err)
	switch {
	case status == http.StatusNotFound:
		return "not_found", payload.ErrorCode
	case status == http.StatusTooManyRequests:
		return "rate_limited", payload.ErrorCode
	case status < http.StatusInternalServerError:
		return "client_error", payload.ErrorCode
	default:
		return "internal_error", payload.ErrorCode
	}
}
