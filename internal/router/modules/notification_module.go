package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citygate/csrms/internal/container"
	handlers "github.com/citygate/csrms/internal/interface/http"
	"github.com/citygate/csrms/internal/interface/middleware"
	"github.com/citygate/csrms/pkg/helpers"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	JWT     *helpers.JWTManager
}

func NewNotificationModule(h *handlers.NotificationHandler, jwt *helpers.JWTManager) *NotificationModule {
	return &NotificationModule{Handler: h, JWT: jwt}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/notifications", m.Handler.List)
		auth.PUT("/notifications/read-all", m.Handler.MarkAllRead)
		auth.PUT("/notifications/:code/read", m.Handler.MarkRead)
		auth.DELETE("/notifications/:code", m.Handler.Delete)
	}
}
