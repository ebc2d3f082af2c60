package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serverName = "Comprehensive Mock API Server"

// bindJSON decodes the request body. An empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidRequest
	}
	return nil
}

func (s *Server) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Comprehensive Mock Recharge & Bill Payment API",
		"version": s.cfg.AppVersion,
		"endpoints": gin.H{
			"mobile_recharge": gin.H{
				"GET /api/operators":                      "Get supported mobile operators",
				"POST /api/recharge":                      "Submit mobile recharge request",
				"GET /api/recharge/status/:transactionId": "Check recharge status",
				"GET /api/recharge/history":               "Get recharge transaction history",
				"POST /api/balance":                       "Check mobile balance",
			},
			"bill_payment": gin.H{
				"GET /api/billpay/providers":             "Get available bill providers",
				"POST /api/billpay":                      "Submit bill payment request",
				"GET /api/billpay/status/:transactionId": "Check bill payment status",
				"POST /api/billpay/verify":               "Verify account information",
			},
			"general": gin.H{
				"GET /api/test":   "API health check",
				"GET /api/status": "API status and statistics",
				"GET /health":     "Server health check",
				"GET /metrics":    "Prometheus metrics",
			},
		},
	})
}

func (s *Server) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Mock Recharge & Bill Payment API is running",
		"timestamp": time.Now().UTC(),
		"server":    serverName,
		"version":   s.cfg.AppVersion,
	})
}

func (s *Server) EchoTest(c *gin.Context) {
	var body any
	if err := bindJSON(c, &body); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Mock API connection test successful",
		"timestamp": time.Now().UTC(),
		"server":    serverName,
		"version":   s.cfg.AppVersion,
		"test_data": body,
	})
}

func (s *Server) GetAPIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.statusSvc.Status(c.Request.Context()),
		"message": "API status retrieved successfully",
	})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, s.statusSvc.Health())
}
