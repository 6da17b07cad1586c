package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	"github.com/worktrack/timeclock-api/internal/service"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
	"github.com/worktrack/timeclock-api/pkg/response"
)

type scheduleManager interface {
	List(ctx context.Context, query service.ScheduleListQuery) ([]models.WorkSchedule, *models.Pagination, error)
	Upsert(ctx context.Context, input service.ScheduleInput) (*models.WorkSchedule, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleHandler serves schedule administration.
type ScheduleHandler struct {
	schedules scheduleManager
	logger    *zap.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules scheduleManager, logger *zap.Logger) *ScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// List godoc
// @Summary List work schedules
// @Tags schedules
// @Produce json
// @Param employee_id query string false "Filter by employee"
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param date_from query string false "Range start (YYYY-MM-DD)"
// @Param date_to query string false "Range end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.WorkSchedule}
// @Failure 400 {object} response.Envelope
// @Security AdminBearer
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	schedules, pagination, err := h.schedules.List(c.Request.Context(), service.ScheduleListQuery{
		EmployeeID: c.Query("employee_id"),
		Date:       c.Query("date"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Upsert godoc
// @Summary Create or replace a planned day
// @Description Writes the schedule for (employee, date). A second write for the same pair overwrites the previous row.
// @Tags schedules
// @Accept json
// @Produce json
// @Param request body service.ScheduleInput true "Planned day"
// @Success 200 {object} response.Envelope{data=models.WorkSchedule}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security AdminBearer
// @Router /schedules [put]
func (h *ScheduleHandler) Upsert(c *gin.Context) {
	var input service.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	schedule, err := h.schedules.Upsert(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a planned day
// @Tags schedules
// @Param id path string true "Schedule id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security AdminBearer
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
