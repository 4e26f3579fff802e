package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citygate/csrms/internal/container"
	handlers "github.com/citygate/csrms/internal/interface/http"
	"github.com/citygate/csrms/internal/interface/middleware"
	"github.com/citygate/csrms/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits. Code issuance is the
	// tightest to keep mail volume and guessing pressure down.
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	issueLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/verify-email", verifyLimiter, m.Handler.VerifyEmail)
	rg.POST("/auth/resend-verification", issueLimiter, m.Handler.ResendVerification)
	rg.POST("/auth/forgot-password", issueLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/verify-reset-code", verifyLimiter, m.Handler.VerifyResetCode)
	rg.POST("/auth/reset-password", verifyLimiter, m.Handler.ResetPassword)
}
