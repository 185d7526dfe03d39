package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/diagnostics"
	"github.com/mesikahq/clinic-core/internal/patient"
)

func (h *Handler) diagnosticsError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, diagnostics.ErrLabTestNotFound),
		errors.Is(err, diagnostics.ErrExamNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, diagnostics.ErrInvalidStatus), errors.Is(err, diagnostics.ErrMissingField):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

type createLabTestRequest struct {
	PatientID       string  `json:"patient_id" binding:"required"`
	MedicalRecordID *string `json:"medical_record_id"`
	OrderedBy       string  `json:"ordered_by" binding:"required"`
	TestName        string  `json:"test_name" binding:"required"`
	TestType        *string `json:"test_type"`
	Notes           *string `json:"notes"`
}

func (h *Handler) CreateLabTest(c *gin.Context) {
	var req createLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t := diagnostics.LabTest{
		PatientID:       req.PatientID,
		MedicalRecordID: req.MedicalRecordID,
		OrderedBy:       req.OrderedBy,
		TestName:        req.TestName,
		TestType:        req.TestType,
		Notes:           req.Notes,
	}
	if err := h.diagnosticsService.CreateLabTest(c.Request.Context(), &t); err != nil {
		h.diagnosticsError(c, err, "failed to create lab test")
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListLabTests(c *gin.Context) {
	filter := diagnostics.ListFilter{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	}
	tests, err := h.diagnosticsService.ListLabTests(c.Request.Context(), filter)
	if err != nil {
		h.diagnosticsError(c, err, "failed to list lab tests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_tests": tests, "count": len(tests)})
}

func (h *Handler) UpdateLabTest(c *gin.Context) {
	var upd diagnostics.LabTestUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.diagnosticsService.UpdateLabTest(c.Request.Context(), c.Param("id"), &upd)
	if err != nil {
		h.diagnosticsError(c, err, "failed to update lab test")
		return
	}
	c.JSON(http.StatusOK, t)
}

type createRadiologyExamRequest struct {
	PatientID       string  `json:"patient_id" binding:"required"`
	MedicalRecordID *string `json:"medical_record_id"`
	OrderedBy       string  `json:"ordered_by" binding:"required"`
	ExamType        string  `json:"exam_type" binding:"required"`
	BodyPart        *string `json:"body_part"`
}

func (h *Handler) CreateRadiologyExam(c *gin.Context) {
	var req createRadiologyExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	e := diagnostics.RadiologyExam{
		PatientID:       req.PatientID,
		MedicalRecordID: req.MedicalRecordID,
		OrderedBy:       req.OrderedBy,
		ExamType:        req.ExamType,
		BodyPart:        req.BodyPart,
	}
	if err := h.diagnosticsService.CreateRadiologyExam(c.Request.Context(), &e); err != nil {
		h.diagnosticsError(c, err, "failed to create radiology exam")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListRadiologyExams(c *gin.Context) {
	filter := diagnostics.ListFilter{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
	}
	exams, err := h.diagnosticsService.ListRadiologyExams(c.Request.Context(), filter)
	if err != nil {
		h.diagnosticsError(c, err, "failed to list radiology exams")
		return
	}
	c.JSON(http.StatusOK, gin.H{"radiology_exams": exams, "count": len(exams)})
}

func (h *Handler) UpdateRadiologyExam(c *gin.Context) {
	var upd diagnostics.RadiologyExamUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	e, err := h.diagnosticsService.UpdateRadiologyExam(c.Request.Context(), c.Param("id"), &upd)
	if err != nil {
		h.diagnosticsError(c, err, "failed to update radiology exam")
		return
	}
	c.JSON(http.StatusOK, e)
}
