package router

import "github.com/gin-gonic/gin"

// Module is one feature area of the API (auth, requests, profile,
// notifications) that knows how to mount its own routes.
type Module interface {
	Register(rg *gin.RouterGroup)
}
