package repository

import (
	"context"
	"time"

	"github.com/citygate/csrms/internal/domain/entity"
)

// RequestWithOwner joins a service request with the owning citizen's
// identity, loaded in one query so the lifecycle engine can audit and
// notify without extra round-trips.
type RequestWithOwner struct {
	entity.ServiceRequest
	OwnerUserID string
	OwnerEmail  string
	OwnerPref   entity.NotificationPreference
}

// RequestFilter captures list parameters. Zero values mean "no filter".
type RequestFilter struct {
	Status   entity.RequestStatus
	Category entity.RequestCategory
	Priority entity.RequestPriority
	// OwnerUserID limits results to requests belonging to this user.
	OwnerUserID string
	SortBy      string // submission_date, priority, status
	Descending  bool
	Limit       int
}

// StatusCounts aggregates a citizen's requests by lifecycle bucket.
// Resolved counts both Resolved and Closed, matching the reporting view
// existing clients consume.
type StatusCounts struct {
	Total      int
	Pending    int
	InProgress int
	Resolved   int
	Rejected   int
}

// RequestRepository encapsulates service request persistence. Requests are
// never deleted; status writes happen only through the lifecycle engine.
type RequestRepository interface {
	Create(ctx context.Context, r *entity.ServiceRequest) error
	GetByCode(ctx context.Context, code string) (*RequestWithOwner, error)
	// GetByCodeForUpdate takes the request's row lock so two concurrent
	// status updates serialize and the guard re-checks fresh state.
	// Only meaningful inside a transaction.
	GetByCodeForUpdate(ctx context.Context, code string) (*RequestWithOwner, error)
	// UpdateStatus persists the new status; when resolvedAt is non-nil the
	// resolution date is set if not already recorded.
	UpdateStatus(ctx context.Context, id string, status entity.RequestStatus, resolvedAt *time.Time) error
	// CloseEligible atomically closes a request currently in Resolved,
	// In Progress or Pending and stamps the resolution date if unset.
	// Returns nil when the request is missing or already closed.
	CloseEligible(ctx context.Context, code string, closedAt time.Time) (*RequestWithOwner, error)
	SetImagePath(ctx context.Context, id, imageURL string) error
	List(ctx context.Context, f RequestFilter) ([]entity.ServiceRequest, error)
	ListByOwner(ctx context.Context, userID string, limit int) ([]entity.ServiceRequest, error)
	StatusCounts(ctx context.Context, userID string) (*StatusCounts, error)
}
