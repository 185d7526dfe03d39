package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/clinic-core/internal/audit"
	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/billing"
	"github.com/mesikahq/clinic-core/internal/diagnostics"
	"github.com/mesikahq/clinic-core/internal/medrecord"
	"github.com/mesikahq/clinic-core/internal/metrics"
	"github.com/mesikahq/clinic-core/internal/patient"
	"github.com/mesikahq/clinic-core/internal/pharmacy"
	"github.com/mesikahq/clinic-core/internal/queue"
	"github.com/mesikahq/clinic-core/internal/report"
)

const dateLayout = "2006-01-02"

type Handler struct {
	authService        auth.Service
	patientService     patient.Service
	queueService       queue.Service
	medrecordService   medrecord.Service
	diagnosticsService diagnostics.Service
	pharmacyService    pharmacy.Service
	billingService     billing.Service
	reportService      report.Service
	auditService       audit.Service
	metrics            *metrics.Metrics
}

func NewHandler(
	authService auth.Service,
	patientService patient.Service,
	queueService queue.Service,
	medrecordService medrecord.Service,
	diagnosticsService diagnostics.Service,
	pharmacyService pharmacy.Service,
	billingService billing.Service,
	reportService report.Service,
	auditService audit.Service,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		authService:        authService,
		patientService:     patientService,
		queueService:       queueService,
		medrecordService:   medrecordService,
		diagnosticsService: diagnosticsService,
		pharmacyService:    pharmacyService,
		billingService:     billingService,
		reportService:      reportService,
		auditService:       auditService,
		metrics:            m,
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// auditEvent records a business event with the request's identity fields
// attached. Failures are swallowed; the trail must never block the request.
func (h *Handler) auditEvent(c *gin.Context, eventType audit.EventType, action, resource, resourceID, status string) {
	_ = h.auditService.LogEvent(c.Request.Context(), &audit.Event{
		Timestamp:  time.Now(),
		EventType:  eventType,
		UserID:     auth.GetUserID(c),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		RequestID:  c.GetString("request_id"),
		Status:     status,
	})
}
