package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenlane/leasehold-backend/internal/http/response"
	"github.com/havenlane/leasehold-backend/internal/services"
)

type DepositHandler struct {
	deposits services.DepositLedger
}

func NewDepositHandler(deposits services.DepositLedger) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

func (dh *DepositHandler) Open(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deposit, err := dh.deposits.Open(c.Request.Context(), contractID, req.Amount, req.Currency)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, deposit)
}

func (dh *DepositHandler) GetByContract(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	deposit, err := dh.deposits.GetByContract(c.Request.Context(), contractID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, deposit)
}

func (dh *DepositHandler) Deduct(c *gin.Context) {
	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deposit, err := dh.deposits.Deduct(c.Request.Context(), depositID, req.Amount, req.Reason)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, deposit)
}

func (dh *DepositHandler) Refund(c *gin.Context) {
	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deposit, err := dh.deposits.Refund(c.Request.Context(), depositID, req.Amount)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, deposit)
}
