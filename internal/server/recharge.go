package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	rechargedomain "github.com/smallbiznis/rechargemock/internal/recharge/domain"
	"github.com/smallbiznis/rechargemock/internal/validation"
)

type rechargeRequest struct {
	PhoneNumber string `json:"phone_number"`
	Amount      any    `json:"amount"`
	Operator    string `json:"operator"`
	PackageID   any    `json:"package_id"`
}

type balanceRequest struct {
	PhoneNumber string `json:"phone_number"`
	Operator    string `json:"operator"`
}

func (s *Server) ListOperators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.catalogSvc.Operators(),
		"message": "Supported mobile operators retrieved successfully",
	})
}

func (s *Server) SubmitRecharge(c *gin.Context) {
	var req rechargeRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	tx, err := s.rechargeSvc.Submit(c.Request.Context(), validation.RechargeInput{
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Amount:      req.Amount,
		Operator:    strings.TrimSpace(req.Operator),
		PackageID:   packageIDString(req.PackageID),
	})
	if err != nil {
		if failure, ok := rechargedomain.AsFailure(err); ok {
			setTransactionID(c, failure.Reference)
		}
		AbortWithError(c, err)
		return
	}

	setTransactionID(c, tx.TransactionID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Mobile recharge processed successfully",
		"data":    tx,
	})
}

func (s *Server) GetRechargeStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("transactionId"))
	setTransactionID(c, id)

	tx, err := s.rechargeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tx,
		"message": "Mobile recharge transaction details retrieved successfully",
	})
}

func (s *Server) ListRechargeHistory(c *gin.Context) {
	limit, err := parseNonNegativeInt(c.Query("limit"), rechargedomain.DefaultHistoryLimit)
	if err != nil {
		AbortWithError(c, rechargedomain.ErrInvalidPagination)
		return
	}
	offset, err := parseNonNegativeInt(c.Query("offset"), 0)
	if err != nil {
		AbortWithError(c, rechargedomain.ErrInvalidPagination)
		return
	}

	page, err := s.rechargeSvc.History(c.Request.Context(), rechargedomain.HistoryRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Transactions,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
		"message": "Mobile recharge transaction history retrieved successfully",
	})
}

func (s *Server) CheckBalance(c *gin.Context) {
	var req balanceRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.rechargeSvc.Balance(c.Request.Context(), rechargedomain.BalanceRequest{
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Operator:    strings.TrimSpace(req.Operator),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    balance,
		"message": "Balance retrieved successfully",
	})
}

// packageIDString accepts package ids sent as strings or numbers.
func packageIDString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
