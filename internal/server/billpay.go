package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billpaydomain "github.com/smallbiznis/rechargemock/internal/billpay/domain"
	"github.com/smallbiznis/rechargemock/internal/validation"
)

type billPaymentRequest struct {
	ProviderCode  string `json:"provider_code"`
	AccountNumber string `json:"account_number"`
	CustomerName  string `json:"customer_name"`
	Amount        any    `json:"amount"`
	CustomerPhone string `json:"customer_phone"`
	Note          string `json:"note"`
}

type verifyAccountRequest struct {
	ProviderCode  string `json:"provider_code"`
	AccountNumber string `json:"account_number"`
}

func (s *Server) ListBillProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.catalogSvc.Providers(),
	})
}

func (s *Server) SubmitBillPayment(c *gin.Context) {
	var req billPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	tx, err := s.billpaySvc.Submit(c.Request.Context(), validation.BillPaymentInput{
		ProviderCode:  strings.TrimSpace(req.ProviderCode),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Amount:        req.Amount,
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Note:          strings.TrimSpace(req.Note),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	setTransactionID(c, tx.TransactionID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bill payment request submitted successfully",
		"data":    tx,
	})
}

func (s *Server) GetBillPaymentStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("transactionId"))
	setTransactionID(c, id)

	tx, err := s.billpaySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tx,
	})
}

func (s *Server) VerifyBillAccount(c *gin.Context) {
	var req verifyAccountRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	verification, err := s.billpaySvc.Verify(c.Request.Context(), billpaydomain.VerifyRequest{
		ProviderCode:  strings.TrimSpace(req.ProviderCode),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    verification,
		"message": "Account verified successfully",
	})
}
