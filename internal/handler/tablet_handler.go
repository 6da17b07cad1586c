package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/middleware"
	"github.com/worktrack/timeclock-api/internal/models"
	"github.com/worktrack/timeclock-api/internal/service"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
	"github.com/worktrack/timeclock-api/pkg/response"
)

type tabletEmployeeRepository interface {
	GetByQRToken(ctx context.Context, token string) (*models.Employee, error)
}

type tabletEventRepository interface {
	LastByDevice(ctx context.Context, deviceID string) (*models.TimeEvent, error)
	CountByDevice(ctx context.Context, deviceID string) (int, error)
}

type eventRegistrar interface {
	Register(ctx context.Context, employeeID, deviceID string, eventType models.EventType) (*service.RegistrationResult, error)
}

type employeeStateDeriver interface {
	Derive(ctx context.Context, employeeID string, day time.Time) (models.EmployeeState, error)
	Location() *time.Location
}

// TabletHandler serves the endpoints tablets talk to.
type TabletHandler struct {
	employees tabletEmployeeRepository
	events    tabletEventRepository
	registrar eventRegistrar
	state     employeeStateDeriver
	logger    *zap.Logger
}

// NewTabletHandler constructs the handler.
func NewTabletHandler(employees tabletEmployeeRepository, events tabletEventRepository, registrar eventRegistrar, state employeeStateDeriver, logger *zap.Logger) *TabletHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TabletHandler{employees: employees, events: events, registrar: registrar, state: state, logger: logger}
}

// RegisterEventRequest is the tablet submission payload. The device is taken
// from the authenticated token; device_id only overrides it for kiosks that
// proxy several physical readers.
type RegisterEventRequest struct {
	QR        string `json:"qr" binding:"required"`
	EventType string `json:"event_type" binding:"required"`
	DeviceID  string `json:"device_id"`
}

// RegisterEventResponse pairs the registration outcome with the employee's
// resulting duty state so the tablet can refresh its screen in one round trip.
type RegisterEventResponse struct {
	Accepted bool                  `json:"accepted"`
	Message  string                `json:"message"`
	Event    *models.TimeEvent     `json:"event,omitempty"`
	Employee string                `json:"employee"`
	State    *models.EmployeeState `json:"state,omitempty"`
}

// RegisterEvent godoc
// @Summary Register a time event
// @Description Validates a QR badge scan against the duty state machine and appends the event when legal. A rejected scan returns 200 with accepted=false; only unknown badges are a 404.
// @Tags tablet
// @Accept json
// @Produce json
// @Param request body RegisterEventRequest true "Scan payload"
// @Success 201 {object} response.Envelope{data=RegisterEventResponse}
// @Success 200 {object} response.Envelope{data=RegisterEventResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security DeviceToken
// @Router /tablet/events [post]
func (h *TabletHandler) RegisterEvent(c *gin.Context) {
	var req RegisterEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	eventType := models.EventType(req.EventType)
	if !eventType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unrecognized event type"))
		return
	}

	employee, err := h.employees.GetByQRToken(c.Request.Context(), req.QR)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "employee lookup failed"))
		return
	}
	if employee == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown badge"))
		return
	}
	if !employee.IsActive {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "employee is inactive"))
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		if device := middleware.DeviceFromContext(c); device != nil {
			deviceID = device.ID
		}
	}

	result, err := h.registrar.Register(c.Request.Context(), employee.ID, deviceID, eventType)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := RegisterEventResponse{
		Accepted: result.Accepted,
		Message:  result.Message,
		Event:    result.Event,
		Employee: employee.FullName(),
	}
	state, err := h.state.Derive(c.Request.Context(), employee.ID, time.Now().In(h.state.Location()))
	if err == nil {
		payload.State = &state
	} else {
		h.logger.Warn("state derivation after registration failed", zap.String("employee_id", employee.ID), zap.Error(err))
	}

	status := http.StatusCreated
	if !result.Accepted {
		status = http.StatusOK
	}
	response.JSON(c, status, payload, nil)
}

// TabletStatusResponse reports device heartbeat data plus, when a badge is
// supplied, the employee's current duty state.
type TabletStatusResponse struct {
	Device        models.Device         `json:"device"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	EventCount    int                   `json:"event_count"`
	LastEventAt   *string               `json:"last_event_at"`
	EmployeeState *models.EmployeeState `json:"employee_state,omitempty"`
}

// Status godoc
// @Summary Tablet status
// @Description Returns the authenticated device's heartbeat. With ?qr=<badge> it also includes that employee's current duty state.
// @Tags tablet
// @Produce json
// @Param qr query string false "Employee badge token"
// @Success 200 {object} response.Envelope{data=TabletStatusResponse}
// @Failure 401 {object} response.Envelope
// @Security DeviceToken
// @Router /tablet/status [get]
func (h *TabletHandler) Status(c *gin.Context) {
	device := middleware.DeviceFromContext(c)
	if device == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "device token required"))
		return
	}

	payload := TabletStatusResponse{Device: *device}
	if !device.CreatedAt.IsZero() {
		payload.UptimeSeconds = int64(time.Since(device.CreatedAt).Seconds())
	}

	count, err := h.events.CountByDevice(c.Request.Context(), device.ID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "event count failed"))
		return
	}
	payload.EventCount = count

	last, err := h.events.LastByDevice(c.Request.Context(), device.ID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "last event lookup failed"))
		return
	}
	if last != nil {
		ts := last.Timestamp.In(h.state.Location()).Format(time.RFC3339)
		payload.LastEventAt = &ts
	}

	if qr := c.Query("qr"); qr != "" {
		employee, err := h.employees.GetByQRToken(c.Request.Context(), qr)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "employee lookup failed"))
			return
		}
		if employee == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown badge"))
			return
		}
		state, err := h.state.Derive(c.Request.Context(), employee.ID, time.Now().In(h.state.Location()))
		if err != nil {
			response.Error(c, err)
			return
		}
		payload.EmployeeState = &state
	}

	response.JSON(c, http.StatusOK, payload, nil)
}
