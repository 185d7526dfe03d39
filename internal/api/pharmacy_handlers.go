package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/clinic-core/internal/audit"
	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/patient"
	"github.com/mesikahq/clinic-core/internal/pharmacy"
)

func (h *Handler) pharmacyError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, pharmacy.ErrMedicationNotFound),
		errors.Is(err, pharmacy.ErrPrescriptionNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pharmacy.ErrInsufficientStock), errors.Is(err, pharmacy.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, pharmacy.ErrInvalidOperation),
		errors.Is(err, pharmacy.ErrInvalidQuantity),
		errors.Is(err, pharmacy.ErrInvalidStatus),
		errors.Is(err, pharmacy.ErrMissingField),
		errors.Is(err, pharmacy.ErrNoItems),
		errors.Is(err, pharmacy.ErrNotADoctor):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *Handler) CreateMedication(c *gin.Context) {
	var m pharmacy.Medication
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.pharmacyService.CreateMedication(c.Request.Context(), &m); err != nil {
		h.pharmacyError(c, err, "failed to create medication")
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMedications(c *gin.Context) {
	lowStockOnly := c.Query("low_stock") == "true"
	meds, err := h.pharmacyService.ListMedications(c.Request.Context(), lowStockOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list medications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"medications": meds, "count": len(meds)})
}

type updateStockRequest struct {
	Quantity  int    `json:"quantity" binding:"required"`
	Operation string `json:"operation" binding:"required"`
}

func (h *Handler) UpdateMedicationStock(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	qty, err := h.pharmacyService.UpdateStock(c.Request.Context(), c.Param("id"), req.Quantity, req.Operation)
	if err != nil {
		h.pharmacyError(c, err, "failed to update stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "stock_quantity": qty})
}

type prescriptionItemRequest struct {
	MedicationID string  `json:"medication_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required"`
	Dosage       *string `json:"dosage"`
	Frequency    *string `json:"frequency"`
	Duration     *string `json:"duration"`
	Instructions *string `json:"instructions"`
}

type createPrescriptionRequest struct {
	PatientID       string                    `json:"patient_id" binding:"required"`
	DoctorID        string                    `json:"doctor_id" binding:"required"`
	MedicalRecordID *string                   `json:"medical_record_id"`
	Notes           *string                   `json:"notes"`
	Items           []prescriptionItemRequest `json:"items" binding:"required"`
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req createPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := pharmacy.Prescription{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		MedicalRecordID: req.MedicalRecordID,
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		p.Items = append(p.Items, &pharmacy.PrescriptionItem{
			MedicationID: it.MedicationID,
			Quantity:     it.Quantity,
			Dosage:       it.Dosage,
			Frequency:    it.Frequency,
			Duration:     it.Duration,
			Instructions: it.Instructions,
		})
	}

	if err := h.pharmacyService.CreatePrescription(c.Request.Context(), &p); err != nil {
		h.pharmacyError(c, err, "failed to create prescription")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	filter := pharmacy.PrescriptionFilter{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	}
	prescriptions, err := h.pharmacyService.ListPrescriptions(c.Request.Context(), filter)
	if err != nil {
		h.pharmacyError(c, err, "failed to list prescriptions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"prescriptions": prescriptions, "count": len(prescriptions)})
}

type dispenseRequest struct {
	DispensedBy string `json:"dispensed_by" binding:"required"`
}

func (h *Handler) DispensePrescription(c *gin.Context) {
	var req dispenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.pharmacyService.DispensePrescription(c.Request.Context(), c.Param("id"), req.DispensedBy)
	if err != nil {
		h.pharmacyError(c, err, "failed to dispense prescription")
		return
	}

	h.metrics.PrescriptionsFilled.Inc()
	h.auditEvent(c, audit.EventDispense, "dispense", "prescription", p.ID, "success")
	c.JSON(http.StatusOK, p)
}
