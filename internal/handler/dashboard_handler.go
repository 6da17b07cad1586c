package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	"github.com/worktrack/timeclock-api/pkg/response"
)

type liveDashboard interface {
	Live(ctx context.Context) ([]models.DashboardRow, bool, error)
}

// DashboardHandler serves the back-office live view.
type DashboardHandler struct {
	dashboard liveDashboard
	logger    *zap.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard liveDashboard, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Live godoc
// @Summary Live attendance dashboard
// @Description Returns one row per employee with today's status, times and anomalies.
// @Tags dashboard
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.DashboardRow}
// @Failure 401 {object} response.Envelope
// @Security AdminBearer
// @Router /dashboard/live [get]
func (h *DashboardHandler) Live(c *gin.Context) {
	rows, cached, err := h.dashboard.Live(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"cache": cacheLabel(cached)})
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
