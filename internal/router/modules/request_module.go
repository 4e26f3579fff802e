package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citygate/csrms/internal/container"
	"github.com/citygate/csrms/internal/domain/entity"
	handlers "github.com/citygate/csrms/internal/interface/http"
	"github.com/citygate/csrms/internal/interface/middleware"
	"github.com/citygate/csrms/pkg/helpers"
)

type RequestModule struct {
	Handler *handlers.RequestHandler
	JWT     *helpers.JWTManager
}

func NewRequestModule(h *handlers.RequestHandler, jwt *helpers.JWTManager) *RequestModule {
	return &RequestModule{Handler: h, JWT: jwt}
}

func (m *RequestModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)

	citizen := auth.Group("/")
	citizen.Use(middleware.RequireRole(string(entity.RoleCitizen)))
	{
		citizen.POST("/requests", m.Handler.Create)
		citizen.GET("/requests/mine", m.Handler.ListMine)
		citizen.GET("/requests/stats", m.Handler.Stats)
		citizen.POST("/requests/:code/image", m.Handler.UploadImage)
	}

	admin := auth.Group("/")
	admin.Use(middleware.RequireRole(string(entity.RoleAdministrator)))
	{
		admin.GET("/admin/requests", m.Handler.List)
		admin.PUT("/admin/requests/:code/status", m.Handler.UpdateStatus)
		admin.GET("/admin/requests/search", m.Handler.Search)
	}

	// Both roles can view and close a request; the service enforces that a
	// citizen may only touch their own.
	auth.GET("/requests/:code", m.Handler.Get)
	auth.POST("/requests/:code/close", m.Handler.Close)
}
