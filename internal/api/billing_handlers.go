package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/clinic-core/internal/audit"
	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/billing"
	"github.com/mesikahq/clinic-core/internal/money"
	"github.com/mesikahq/clinic-core/internal/patient"
)

func (h *Handler) billingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, billing.ErrServiceNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrInvalidStatus),
		errors.Is(err, billing.ErrInvalidQuantity),
		errors.Is(err, billing.ErrMissingField),
		errors.Is(err, billing.ErrNoItems):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *Handler) CreateService(c *gin.Context) {
	var item billing.CatalogItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.billingService.CreateCatalogItem(c.Request.Context(), &item); err != nil {
		h.billingError(c, err, "failed to create service")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListServices(c *gin.Context) {
	filter := billing.CatalogFilter{Category: c.Query("category")}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	items, err := h.billingService.ListCatalog(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": items, "count": len(items)})
}

type invoiceItemRequest struct {
	ServiceID   *string     `json:"service_id"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity" binding:"required"`
	UnitPrice   money.Cents `json:"unit_price"`
}

type createInvoiceRequest struct {
	PatientID string               `json:"patient_id" binding:"required"`
	Discount  money.Cents          `json:"discount"`
	Tax       money.Cents          `json:"tax"`
	Notes     *string              `json:"notes"`
	Items     []invoiceItemRequest `json:"items" binding:"required"`
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	inv := billing.Invoice{
		PatientID: req.PatientID,
		Discount:  req.Discount,
		Tax:       req.Tax,
		Notes:     req.Notes,
	}
	for _, it := range req.Items {
		inv.Items = append(inv.Items, &billing.InvoiceItem{
			ServiceID:   it.ServiceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	if err := h.billingService.CreateInvoice(c.Request.Context(), &inv); err != nil {
		h.billingError(c, err, "failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	filter := billing.InvoiceFilter{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	}
	invoices, err := h.billingService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.billingError(c, err, "failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "count": len(invoices)})
}

type processPaymentRequest struct {
	Method    string `json:"method" binding:"required"`
	CashierID string `json:"cashier_id" binding:"required"`
}

func (h *Handler) ProcessPayment(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	inv, err := h.billingService.ProcessPayment(c.Request.Context(), c.Param("id"), req.Method, req.CashierID)
	if err != nil {
		h.billingError(c, err, "failed to process payment")
		return
	}

	h.metrics.PaymentsProcessed.Inc()
	h.auditEvent(c, audit.EventPayment, "pay", "invoice", inv.ID, "success")
	c.JSON(http.StatusOK, inv)
}
