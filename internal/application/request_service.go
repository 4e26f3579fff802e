package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
	"github.com/citygate/csrms/pkg/apperr"
	"github.com/citygate/csrms/pkg/helpers"
	"github.com/citygate/csrms/pkg/mailer"
)

type RequestService struct {
	Requests      repository.RequestRepository
	Citizens      repository.CitizenRepository
	Audit         repository.AuditRepository
	Notifications repository.NotificationRepository
	Tx            repository.TxManager
	Queue         EmailQueue
	Logger        *logrus.Logger
	MailEnabled   bool
	GCS           *storage.Client
	GCSBucket     string
	ES            *elasticsearch.Client
	ESIndex       string
}

type CreateRequestInput struct {
	Title       string
	Description string
	Category    entity.RequestCategory
	Priority    entity.RequestPriority
	Location    string
}

// Create files a new request in Pending. The insert, the citizen's submitted
// counter and the audit entry commit together.
func (s *RequestService) Create(ctx context.Context, actor Actor, in CreateRequestInput) (*entity.ServiceRequest, error) {
	citizen, err := s.Citizens.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.NewDependency("load citizen profile", err)
	}
	if citizen == nil {
		return nil, apperr.NewForbidden("no citizen profile for this account")
	}

	req := &entity.ServiceRequest{
		RequestCode: helpers.NewCode("REQ"),
		CitizenID:   citizen.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      entity.StatusPending,
		Priority:    in.Priority,
		Location:    in.Location,
	}
	if req.Priority == "" {
		req.Priority = entity.PriorityMedium
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Requests.Create(ctx, req); err != nil {
			return apperr.NewDependency("create request", err)
		}
		if err := s.Citizens.IncrementSubmitted(ctx, citizen.ID); err != nil {
			return apperr.NewDependency("update citizen counters", err)
		}
		entry := auditEntry(actor.UserID, entity.ActionRequestCreate, fmt.Sprintf("Created %s (%s)", req.RequestCode, req.Category), actor.IP)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.indexRequest(ctx, req)
	return req, nil
}

// UpdateStatus moves a request along the lifecycle. The row is locked for the
// duration of the transaction, so concurrent updates observe each other's
// result and the transition table is enforced against the current state. The
// resolved counter is bumped only the first time a request ever lands on
// Resolved; a revert-then-resolve cycle counts once.
func (s *RequestService) UpdateStatus(ctx context.Context, code string, target entity.RequestStatus, note string, actor Actor) (*repository.RequestWithOwner, error) {
	if !target.Valid() {
		return nil, apperr.NewValidation("unknown status", map[string]any{"status": string(target)})
	}

	var (
		rw  *repository.RequestWithOwner
		old entity.RequestStatus
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rw, err = s.Requests.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return apperr.NewDependency("load request", err)
		}
		if rw == nil {
			return apperr.NewNotFound("request")
		}
		old = rw.Status
		if old == entity.StatusClosed {
			return apperr.NewConflict("request is closed")
		}
		if !old.CanTransitionTo(target) {
			return apperr.NewInvalidTransition(string(old), string(target))
		}

		var resolvedAt *time.Time
		if target == entity.StatusResolved {
			now := time.Now()
			resolvedAt = &now
		}
		if err := s.Requests.UpdateStatus(ctx, rw.ID, target, resolvedAt); err != nil {
			return apperr.NewDependency("update request status", err)
		}
		if target == entity.StatusResolved && rw.ResolutionDate == nil {
			if err := s.Citizens.IncrementResolved(ctx, rw.CitizenID); err != nil {
				return apperr.NewDependency("update citizen counters", err)
			}
		}

		details := fmt.Sprintf("%s: %s -> %s", rw.RequestCode, old, target)
		if note != "" {
			details += " | note: " + note
		}
		entry := auditEntry(actor.UserID, entity.ActionRequestStatus, details, actor.IP)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rw.Status = target
	if target == entity.StatusResolved && rw.ResolutionDate == nil {
		now := time.Now()
		rw.ResolutionDate = &now
	}
	s.notifyStatusChange(ctx, rw, old, note)
	s.indexRequest(ctx, &rw.ServiceRequest)
	return rw, nil
}

// Close is the owner's acknowledgement of a resolved (or abandoned) request.
// Eligibility is checked and applied in a single guarded UPDATE, so two
// concurrent closes cannot both succeed.
func (s *RequestService) Close(ctx context.Context, code string, actor Actor) (*repository.RequestWithOwner, error) {
	var rw *repository.RequestWithOwner
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rw, err = s.Requests.CloseEligible(ctx, code, time.Now())
		if err != nil {
			return apperr.NewDependency("close request", err)
		}
		if rw == nil {
			return apperr.NewConflict("request not found or not eligible to close")
		}
		if rw.OwnerUserID != actor.UserID && actor.Role != entity.RoleAdministrator {
			return apperr.NewForbidden("only the request owner can close it")
		}
		entry := auditEntry(actor.UserID, entity.ActionRequestClosed, fmt.Sprintf("Closed %s", rw.RequestCode), actor.IP)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.indexRequest(ctx, &rw.ServiceRequest)
	return rw, nil
}

// Get fetches a single request by its public code. Citizens can only see
// their own requests.
func (s *RequestService) Get(ctx context.Context, code string, actor Actor) (*repository.RequestWithOwner, error) {
	rw, err := s.Requests.GetByCode(ctx, code)
	if err != nil {
		return nil, apperr.NewDependency("load request", err)
	}
	if rw == nil {
		return nil, apperr.NewNotFound("request")
	}
	if actor.Role != entity.RoleAdministrator && rw.OwnerUserID != actor.UserID {
		return nil, apperr.NewForbidden("not your request")
	}
	return rw, nil
}

// List returns a filtered page of requests for administrators.
func (s *RequestService) List(ctx context.Context, f repository.RequestFilter) ([]entity.ServiceRequest, error) {
	items, err := s.Requests.List(ctx, f)
	if err != nil {
		return nil, apperr.NewDependency("list requests", err)
	}
	return items, nil
}

// ListMine returns the calling citizen's own requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, userID string, limit int) ([]entity.ServiceRequest, error) {
	items, err := s.Requests.ListByOwner(ctx, userID, limit)
	if err != nil {
		return nil, apperr.NewDependency("list requests", err)
	}
	return items, nil
}

// StatusCounts aggregates the citizen's requests by lifecycle bucket.
func (s *RequestService) StatusCounts(ctx context.Context, userID string) (*repository.StatusCounts, error) {
	counts, err := s.Requests.StatusCounts(ctx, userID)
	if err != nil {
		return nil, apperr.NewDependency("count requests", err)
	}
	return counts, nil
}

// AttachImage uploads a photo for the request and stores its URL. Only the
// owner may attach, and only while the request is still open.
func (s *RequestService) AttachImage(ctx context.Context, code string, actor Actor, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperr.NewDependency("image storage not configured", errors.New("gcs not configured"))
	}
	rw, err := s.Requests.GetByCode(ctx, code)
	if err != nil {
		return "", apperr.NewDependency("load request", err)
	}
	if rw == nil {
		return "", apperr.NewNotFound("request")
	}
	if rw.OwnerUserID != actor.UserID {
		return "", apperr.NewForbidden("not your request")
	}
	if rw.Status.Terminal() {
		return "", apperr.NewConflict("request is no longer open")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("requests", rw.RequestCode, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", apperr.NewDependency("upload image", err)
	}
	if err := s.Requests.SetImagePath(ctx, rw.ID, url); err != nil {
		return "", apperr.NewDependency("store image path", err)
	}
	rw.ImagePath = &url
	s.indexRequest(ctx, &rw.ServiceRequest)
	return url, nil
}

// Search runs a multi_match query over the request index.
func (s *RequestService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "location", "request_code"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, apperr.NewDependency("search requests", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.NewDependency("decode search response", err)
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		if doc == nil {
			doc = map[string]any{}
		}
		doc["id"] = h.ID
		out = append(out, doc)
	}
	return out, nil
}

func (s *RequestService) notifyStatusChange(ctx context.Context, rw *repository.RequestWithOwner, old entity.RequestStatus, note string) {
	msg := fmt.Sprintf("Your request %s moved from %s to %s.", rw.RequestCode, old, rw.Status)
	if note != "" {
		msg += " Note: " + note
	}
	n := &entity.Notification{
		NotificationCode: helpers.NewCode("NTF"),
		RecipientID:      rw.OwnerUserID,
		Title:            "Request " + rw.RequestCode + " updated",
		Message:          msg,
	}
	if err := s.Notifications.Create(ctx, n); err != nil {
		s.Logger.WithError(err).WithField("request_code", rw.RequestCode).Warn("status updated but notification not stored")
	}

	if !s.MailEnabled || s.Queue == nil || rw.OwnerPref != entity.PreferEmail {
		return
	}
	job := mailer.EmailJob{
		To:      rw.OwnerEmail,
		Subject: "CSRMS Update: " + rw.RequestCode,
		Text:    msg,
	}
	if err := s.Queue.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("request_code", rw.RequestCode).Warn("failed to enqueue status email")
	}
}

func (s *RequestService) indexRequest(ctx context.Context, req *entity.ServiceRequest) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":              req.ID,
		"request_code":    req.RequestCode,
		"title":           req.Title,
		"description":     req.Description,
		"category":        req.Category,
		"status":          req.Status,
		"priority":        req.Priority,
		"location":        req.Location,
		"submission_date": req.SubmissionDate.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	idx := esapi.IndexRequest{Index: s.ESIndex, DocumentID: req.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := idx.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("request_code", req.RequestCode).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("request_code", req.RequestCode).Warn("es index response error")
	}
}
