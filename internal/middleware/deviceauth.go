package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/worktrack/timeclock-api/internal/models"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
	"github.com/worktrack/timeclock-api/pkg/response"
)

// DeviceContextKey is where the authenticated device lands in the gin context.
const DeviceContextKey = "auth_device"

type deviceTokenRepository interface {
	GetByAPIToken(ctx context.Context, token string) (*models.Device, error)
}

// DeviceAuth authenticates tablets by their API token, accepted either as
// "Authorization: Token <token>" or the X-Device-Token header. The resolved
// device is stored in the context; handlers decide what an unknown or
// inactive device means for their operation.
func DeviceAuth(devices deviceTokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := deviceToken(c)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "device token required"))
			c.Abort()
			return
		}

		device, err := devices.GetByAPIToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "device lookup failed"))
			c.Abort()
			return
		}
		if device == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid device token"))
			c.Abort()
			return
		}

		c.Set(DeviceContextKey, device)
		c.Next()
	}
}

// DeviceFromContext retrieves the authenticated device, or nil.
func DeviceFromContext(c *gin.Context) *models.Device {
	value, ok := c.Get(DeviceContextKey)
	if !ok {
		return nil
	}
	device, _ := value.(*models.Device)
	return device
}

func deviceToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Token") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.GetHeader("X-Device-Token"))
}
