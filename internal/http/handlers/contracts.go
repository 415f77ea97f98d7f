package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/havenlane/leasehold-backend/internal/domain"
	"github.com/havenlane/leasehold-backend/internal/http/response"
	"github.com/havenlane/leasehold-backend/internal/services"
)

type ContractHandler struct {
	lifecycle services.LifecycleService
	occupancy services.OccupancyLedger
}

func NewContractHandler(lifecycle services.LifecycleService, occupancy services.OccupancyLedger) *ContractHandler {
	return &ContractHandler{lifecycle: lifecycle, occupancy: occupancy}
}

func (ch *ContractHandler) RequestLease(c *gin.Context) {
	var req struct {
		PropertyID   string     `json:"property_id"`
		UnitID       *string    `json:"unit_id"`
		RentAmount   float64    `json:"rent_amount"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
		PaymentCycle string     `json:"payment_cycle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	propertyID, unitID, err := parseRef(req.PropertyID, req.UnitID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contract, err := ch.lifecycle.Request(c.Request.Context(), services.RequestLeaseInput{
		PropertyID:   propertyID,
		UnitID:       unitID,
		RentAmount:   req.RentAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		PaymentCycle: req.PaymentCycle,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, contract)
}

func (ch *ContractHandler) CreateContract(c *gin.Context) {
	var req struct {
		PropertyID   string     `json:"property_id"`
		UnitID       *string    `json:"unit_id"`
		TenantID     string     `json:"tenant_id"`
		RentAmount   float64    `json:"rent_amount"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
		PaymentCycle string     `json:"payment_cycle"`
		Status       string     `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	propertyID, unitID, err := parseRef(req.PropertyID, req.UnitID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_tenant_id", err)
		return
	}
	contract, err := ch.lifecycle.DirectCreate(c.Request.Context(), services.DirectCreateInput{
		PropertyID:   propertyID,
		UnitID:       unitID,
		TenantID:     tenantID,
		RentAmount:   req.RentAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		PaymentCycle: req.PaymentCycle,
		Status:       req.Status,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, contract)
}

func (ch *ContractHandler) ListContracts(c *gin.Context) {
	contracts, err := ch.lifecycle.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contracts": contracts})
}

func (ch *ContractHandler) GetContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contract, err := ch.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, contract)
}

func (ch *ContractHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contract, err := ch.lifecycle.Approve(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, contract)
}

func (ch *ContractHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	contract, err := ch.lifecycle.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, contract)
}

func (ch *ContractHandler) Sign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contract, err := ch.lifecycle.Sign(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, contract)
}

func (ch *ContractHandler) Renew(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	_ = c.ShouldBindJSON(&req)
	contract, err := ch.lifecycle.Renew(c.Request.Context(), id, req.StartDate, req.EndDate)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, contract)
}

func (ch *ContractHandler) Terminate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	contract, err := ch.lifecycle.RequestTermination(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, contract)
}

func (ch *ContractHandler) OccupancyHistory(c *gin.Context) {
	ref, err := refFromQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rows, err := ch.occupancy.History(c.Request.Context(), ref)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"intervals": rows})
}

func (ch *ContractHandler) CurrentOccupant(c *gin.Context) {
	ref, err := refFromQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	open, err := ch.occupancy.CurrentOccupant(c.Request.Context(), ref)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"occupant": open, "occupied": open != nil})
}

func parseRef(propertyRaw string, unitRaw *string) (uuid.UUID, *uuid.UUID, error) {
	var propertyID uuid.UUID
	var err error
	if propertyRaw != "" {
		propertyID, err = uuid.Parse(propertyRaw)
		if err != nil {
			return uuid.Nil, nil, err
		}
	}
	if unitRaw == nil || *unitRaw == "" {
		return propertyID, nil, nil
	}
	unitID, err := uuid.Parse(*unitRaw)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return propertyID, &unitID, nil
}

func refFromQuery(c *gin.Context) (types.UnitRef, error) {
	unitRaw := c.Query("unit_id")
	var unitPtr *string
	if unitRaw != "" {
		unitPtr = &unitRaw
	}
	propertyID, unitID, err := parseRef(c.Query("property_id"), unitPtr)
	if err != nil {
		return types.UnitRef{}, err
	}
	return types.UnitRef{PropertyID: propertyID, UnitID: unitID}, nil
}
