package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citygate/csrms/internal/container"
	handlers "github.com/citygate/csrms/internal/interface/http"
	"github.com/citygate/csrms/internal/interface/middleware"
	"github.com/citygate/csrms/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/profile/password", m.Handler.ChangePassword)
		auth.DELETE("/profile", m.Handler.Deactivate)
		auth.GET("/dashboard", m.Handler.Dashboard)
	}
}
