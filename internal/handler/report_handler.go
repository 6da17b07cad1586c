package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	"github.com/worktrack/timeclock-api/internal/service"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
	"github.com/worktrack/timeclock-api/pkg/response"
)

type reportBuilder interface {
	BuildReport(ctx context.Context, from, to time.Time, employeeID string) (*models.AttendanceReport, error)
}

type reportExporter interface {
	Render(report *models.AttendanceReport, format service.ExportFormat) (*service.ExportResult, error)
}

// ReportHandler serves attendance report queries and downloads.
type ReportHandler struct {
	reports  reportBuilder
	exporter reportExporter
	cache    *service.CacheService
	loc      *time.Location
	logger   *zap.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports reportBuilder, exporter reportExporter, cache *service.CacheService, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, exporter: exporter, cache: cache, loc: loc, logger: logger}
}

const reportDateLayout = "2006-01-02"

func (h *ReportHandler) parseRange(c *gin.Context) (time.Time, time.Time, string, error) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" || toRaw == "" {
		return time.Time{}, time.Time{}, "", appErrors.Clone(appErrors.ErrValidation, "from and to query parameters are required")
	}
	from, err := time.ParseInLocation(reportDateLayout, fromRaw, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", appErrors.Clone(appErrors.ErrValidation, "invalid from, expected YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(reportDateLayout, toRaw, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", appErrors.Clone(appErrors.ErrValidation, "invalid to, expected YYYY-MM-DD")
	}
	return from, to, c.Query("employee_id"), nil
}

func (h *ReportHandler) buildReport(ctx context.Context, from, to time.Time, employeeID string) (*models.AttendanceReport, bool, error) {
	cacheKey := fmt.Sprintf("report:attendance:%s:%s:%s",
		from.Format(reportDateLayout), to.Format(reportDateLayout), employeeID)

	var cached models.AttendanceReport
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	report, err := h.reports.BuildReport(ctx, from, to, employeeID)
	if err != nil {
		return nil, false, err
	}
	_ = h.cache.Set(ctx, cacheKey, report, 0)
	return report, false, nil
}

// Attendance godoc
// @Summary Attendance report
// @Description Aggregates events and schedules per employee and day over an inclusive date range.
// @Tags reports
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param employee_id query string false "Limit to one employee"
// @Success 200 {object} response.Envelope{data=models.AttendanceReport}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security AdminBearer
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	from, to, employeeID, err := h.parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, cached, err := h.buildReport(c.Request.Context(), from, to, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{"cache": cacheLabel(cached)})
}

// Export godoc
// @Summary Download attendance report
// @Description Renders the attendance report as a CSV or PDF file.
// @Tags reports
// @Produce text/csv
// @Produce application/pdf
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param employee_id query string false "Limit to one employee"
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security AdminBearer
// @Router /reports/attendance/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	from, to, employeeID, err := h.parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, _, err := h.buildReport(c.Request.Context(), from, to, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exporter.Render(report, service.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
