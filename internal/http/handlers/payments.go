package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenlane/leasehold-backend/internal/http/response"
	"github.com/havenlane/leasehold-backend/internal/services"
)

type PaymentHandler struct {
	payments services.PaymentScaffold
}

func NewPaymentHandler(payments services.PaymentScaffold) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (ph *PaymentHandler) ListByContract(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rows, err := ph.payments.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"payments": rows})
}

func (ph *PaymentHandler) MarkPaid(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Method string `json:"method"`
	}
	_ = c.ShouldBindJSON(&req)
	payment, err := ph.payments.MarkPaid(c.Request.Context(), paymentID, req.Method)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, payment)
}
