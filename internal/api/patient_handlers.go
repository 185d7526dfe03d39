package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/clinic-core/internal/audit"
	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/medrecord"
	"github.com/mesikahq/clinic-core/internal/patient"
	"github.com/mesikahq/clinic-core/internal/queue"
)

type registerPatientRequest struct {
	FirstName        string  `json:"first_name" binding:"required"`
	LastName         string  `json:"last_name" binding:"required"`
	DateOfBirth      string  `json:"date_of_birth" binding:"required"`
	Gender           string  `json:"gender" binding:"required"`
	Phone            *string `json:"phone"`
	Email            *string `json:"email"`
	Address          *string `json:"address"`
	BloodType        *string `json:"blood_type"`
	Allergies        *string `json:"allergies"`
	EmergencyContact *string `json:"emergency_contact"`
	EmergencyPhone   *string `json:"emergency_phone"`
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req registerPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		badRequest(c, err)
		return
	}

	p := patient.Patient{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      dob,
		Gender:           req.Gender,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		BloodType:        req.BloodType,
		Allergies:        req.Allergies,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
	}

	if err := h.patientService.Register(c.Request.Context(), &p); err != nil {
		if errors.Is(err, patient.ErrInvalidPatientData) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register patient"})
		return
	}

	h.metrics.PatientsRegistered.Inc()
	h.auditEvent(c, audit.EventModify, "register", "patient", p.ID, "success")
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.patientService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch patient"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.patientService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list patients"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients, "count": len(patients)})
}

type createQueueEntryRequest struct {
	PatientID string  `json:"patient_id" binding:"required"`
	QueueDate string  `json:"queue_date"`
	Priority  int     `json:"priority"`
	Notes     *string `json:"notes"`
}

func (h *Handler) CreateQueueEntry(c *gin.Context) {
	var req createQueueEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	queueDate := time.Now()
	if req.QueueDate != "" {
		var err error
		if queueDate, err = time.Parse(dateLayout, req.QueueDate); err != nil {
			badRequest(c, err)
			return
		}
	}

	entry, err := h.queueService.Create(c.Request.Context(), req.PatientID, queueDate, req.Priority, req.Notes)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create queue entry"})
		return
	}

	h.metrics.QueueEntriesCreated.Inc()
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) ListQueue(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		var err error
		if date, err = time.Parse(dateLayout, raw); err != nil {
			badRequest(c, err)
			return
		}
	}

	entries, err := h.queueService.ListByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list queue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

type updateQueueStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateQueueStatus(c *gin.Context) {
	var req updateQueueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.queueService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "queue entry not found"})
		case errors.Is(err, queue.ErrInvalidStatus):
			badRequest(c, err)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update queue entry"})
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

type createMedicalRecordRequest struct {
	PatientID      string  `json:"patient_id" binding:"required"`
	DoctorID       string  `json:"doctor_id" binding:"required"`
	VisitDate      string  `json:"visit_date"`
	ChiefComplaint *string `json:"chief_complaint"`
	Examination    *string `json:"examination"`
	Diagnosis      *string `json:"diagnosis"`
	Treatment      *string `json:"treatment"`
	Notes          *string `json:"notes"`
}

func (h *Handler) CreateMedicalRecord(c *gin.Context) {
	var req createMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rec := medrecord.Record{
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		ChiefComplaint: req.ChiefComplaint,
		Examination:    req.Examination,
		Diagnosis:      req.Diagnosis,
		Treatment:      req.Treatment,
		Notes:          req.Notes,
	}
	if req.VisitDate != "" {
		visitDate, err := time.Parse(dateLayout, req.VisitDate)
		if err != nil {
			badRequest(c, err)
			return
		}
		rec.VisitDate = visitDate
	}

	if err := h.medrecordService.Create(c.Request.Context(), &rec); err != nil {
		switch {
		case errors.Is(err, patient.ErrPatientNotFound), errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, medrecord.ErrNotADoctor):
			badRequest(c, err)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create medical record"})
		}
		return
	}

	h.auditEvent(c, audit.EventModify, "create", "medical_record", rec.ID, "success")
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetMedicalRecord(c *gin.Context) {
	rec, err := h.medrecordService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, medrecord.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medical record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch medical record"})
		return
	}

	h.auditEvent(c, audit.EventAccess, "read", "medical_record", rec.ID, "success")
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListMedicalRecords(c *gin.Context) {
	records, err := h.medrecordService.List(c.Request.Context(), c.Query("patient_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list medical records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
