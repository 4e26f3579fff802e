package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/application"
	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/pkg/response"
	"github.com/citygate/csrms/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	FullName               string `json:"full_name" binding:"omitempty,min=2,max=100"`
	PhoneNumber            string `json:"phone_number" binding:"omitempty,phone"`
	Address                string `json:"address" binding:"omitempty,max=300"`
	NotificationPreference string `json:"notification_preference" binding:"omitempty,notifpref"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

func profileJSON(p *application.Profile) gin.H {
	body := userJSON(p.User)
	if p.Citizen != nil {
		body["citizen_id"] = p.Citizen.CitizenCode
		body["notification_preference"] = p.Citizen.NotificationPreference
		body["total_requests_submitted"] = p.Citizen.TotalRequestsSubmitted
		body["total_requests_resolved"] = p.Citizen.TotalRequestsResolved
	}
	return body
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(p), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), application.UpdateProfileInput{
		FullName:               req.FullName,
		PhoneNumber:            req.PhoneNumber,
		Address:                req.Address,
		NotificationPreference: entity.NotificationPreference(req.NotificationPreference),
	}, c.GetString("real_ip"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(p), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString("userID"), req.CurrentPassword, req.NewPassword, c.GetString("real_ip")); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.Svc.Deactivate(c.Request.Context(), c.GetString("userID"), c.GetString("real_ip")); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deactivated": true}, "account deactivated", nil)
}

func (h *UserHandler) Dashboard(c *gin.Context) {
	d, err := h.Svc.GetDashboard(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profile": profileJSON(&d.Profile),
		"recent_requests": func() []gin.H {
			out := make([]gin.H, 0, len(d.Recent))
			for i := range d.Recent {
				out = append(out, requestJSON(&d.Recent[i]))
			}
			return out
		}(),
		"status_counts": gin.H{
			"total":       d.Counts.Total,
			"pending":     d.Counts.Pending,
			"in_progress": d.Counts.InProgress,
			"resolved":    d.Counts.Resolved,
			"rejected":    d.Counts.Rejected,
		},
		"lifetime": gin.H{
			"submitted": d.Counters.Submitted,
			"resolved":  d.Counters.Resolved,
		},
	}, "dashboard", nil)
}
