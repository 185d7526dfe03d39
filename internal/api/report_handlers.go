package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/report"
)

func (h *Handler) GetDashboardStats(c *gin.Context) {
	stats, err := h.reportService.DashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute dashboard stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type generateReportRequest struct {
	Type   string `json:"type" binding:"required"`
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Format string `json:"format"`
}

func (h *Handler) GenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start, err := time.Parse(dateLayout, req.Start)
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := time.Parse(dateLayout, req.End)
	if err != nil {
		badRequest(c, err)
		return
	}

	// the end date is inclusive
	r, err := h.reportService.Generate(c.Request.Context(), report.GenerateRequest{
		Type:        req.Type,
		Start:       start,
		End:         end.AddDate(0, 0, 1),
		Format:      req.Format,
		GeneratedBy: auth.GetUserID(c),
	})
	if err != nil {
		if errors.Is(err, report.ErrInvalidType) || errors.Is(err, report.ErrInvalidPeriod) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListReports(c *gin.Context) {
	var limit int64 = 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	reports, err := h.reportService.ListArchived(c.Request.Context(), c.Query("type"), limit)
	if err != nil {
		if errors.Is(err, report.ErrInvalidType) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}
