package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citygate/csrms/internal/application"
	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/interface/middleware"
	"github.com/citygate/csrms/pkg/apperr"
	"github.com/citygate/csrms/pkg/response"
)

// writeError translates an application error into the response envelope.
// Foreign errors collapse to a generic 500 so internals never leak.
func writeError(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		var details any
		if len(ae.Details) > 0 {
			details = ae.Details
		}
		response.Error[any](c, apperr.HTTPStatus(err), ae.Message, details)
		return
	}
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

// actorFromCtx rebuilds the authenticated actor from the values the auth
// middleware stored.
func actorFromCtx(c *gin.Context) application.Actor {
	return application.Actor{
		UserID: c.GetString(middleware.CtxUserIDKey),
		Email:  c.GetString(middleware.CtxUserEmailKey),
		Role:   entity.Role(c.GetString(middleware.CtxUserRoleKey)),
		IP:     c.GetString("real_ip"),
	}
}
