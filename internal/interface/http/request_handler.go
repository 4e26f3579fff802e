package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/application"
	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
	"github.com/citygate/csrms/pkg/response"
	"github.com/citygate/csrms/pkg/validation"
)

type RequestHandler struct {
	Svc    *application.RequestService
	Logger *logrus.Logger
}

func NewRequestHandler(svc *application.RequestService, logger *logrus.Logger) *RequestHandler {
	return &RequestHandler{Svc: svc, Logger: logger}
}

type createRequestRequest struct {
	Title       string `json:"title" binding:"required,min=5,max=200"`
	Description string `json:"description" binding:"required,min=10"`
	Category    string `json:"category" binding:"required,category"`
	Priority    string `json:"priority" binding:"omitempty,priority"`
	Location    string `json:"location" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,reqstatus"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

func requestJSON(r *entity.ServiceRequest) gin.H {
	return gin.H{
		"request_id":      r.RequestCode,
		"title":           r.Title,
		"description":     r.Description,
		"category":        r.Category,
		"status":          r.Status,
		"priority":        r.Priority,
		"location":        r.Location,
		"image_path":      r.ImagePath,
		"submission_date": r.SubmissionDate,
		"resolution_date": r.ResolutionDate,
	}
}

func requestListJSON(items []entity.ServiceRequest) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, requestJSON(&items[i]))
	}
	return out
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), actorFromCtx(c), application.CreateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    entity.RequestCategory(req.Category),
		Priority:    entity.RequestPriority(req.Priority),
		Location:    req.Location,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, requestJSON(created), "request submitted", nil)
}

func (h *RequestHandler) Get(c *gin.Context) {
	rw, err := h.Svc.Get(c.Request.Context(), c.Param("code"), actorFromCtx(c))
	if err != nil {
		writeError(c, err)
		return
	}
	body := requestJSON(&rw.ServiceRequest)
	body["allowed_transitions"] = rw.Status.AllowedTargets()
	response.Success(c, http.StatusOK, body, "request", nil)
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rw, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("code"), entity.RequestStatus(req.Status), req.Note, actorFromCtx(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestJSON(&rw.ServiceRequest), "status updated", nil)
}

func (h *RequestHandler) Close(c *gin.Context) {
	rw, err := h.Svc.Close(c.Request.Context(), c.Param("code"), actorFromCtx(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestJSON(&rw.ServiceRequest), "request closed", nil)
}

func (h *RequestHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	f := repository.RequestFilter{
		Status:      entity.RequestStatus(c.Query("status")),
		Category:    entity.RequestCategory(c.Query("category")),
		Priority:    entity.RequestPriority(c.Query("priority")),
		OwnerUserID: c.Query("user_id"),
		SortBy:      c.DefaultQuery("sort_by", "submission_date"),
		Descending:  c.DefaultQuery("order", "desc") == "desc",
		Limit:       limit,
	}
	items, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestListJSON(items), "requests", gin.H{"count": len(items)})
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.Svc.ListMine(c.Request.Context(), c.GetString("userID"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestListJSON(items), "requests", gin.H{"count": len(items)})
}

func (h *RequestHandler) Stats(c *gin.Context) {
	counts, err := h.Svc.StatusCounts(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"total":       counts.Total,
		"pending":     counts.Pending,
		"in_progress": counts.InProgress,
		"resolved":    counts.Resolved,
		"rejected":    counts.Rejected,
	}, "request stats", nil)
}

func (h *RequestHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "image file is required", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read uploaded file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.Svc.AttachImage(c.Request.Context(), c.Param("code"), actorFromCtx(c), f, fileHeader.Filename, contentType)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image_path": url}, "image uploaded", nil)
}

func (h *RequestHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
