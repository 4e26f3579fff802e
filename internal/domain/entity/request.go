package entity

import "time"

// RequestStatus enumerates lifecycle states for service requests. The
// string values are part of the wire contract with existing clients and
// must not change.
type RequestStatus string

const (
	StatusPending    RequestStatus = "Pending"
	StatusInProgress RequestStatus = "In Progress"
	StatusResolved   RequestStatus = "Resolved"
	StatusClosed     RequestStatus = "Closed"
	StatusRejected   RequestStatus = "Rejected"
)

// statusTransitions is the full transition guard: status -> allowed targets.
// Rejected is a reporting state with no inbound workflow edge; Closed and
// Rejected are terminal.
var statusTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusResolved, StatusPending},  // allow revert
	StatusResolved:   {StatusClosed, StatusInProgress}, // allow reopen
	StatusClosed:     {},
	StatusRejected:   {},
}

// Valid reports whether s is a known status value.
func (s RequestStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (s RequestStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether the guard allows the edge s -> target.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns a copy of the guard row for s.
func (s RequestStatus) AllowedTargets() []RequestStatus {
	out := make([]RequestStatus, len(statusTransitions[s]))
	copy(out, statusTransitions[s])
	return out
}

// RequestCategory is the closed enumeration of reportable issue kinds.
type RequestCategory string

const (
	CategoryWaterSupply     RequestCategory = "Water Supply"
	CategoryWasteManagement RequestCategory = "Waste Management"
	CategoryRoadMaintenance RequestCategory = "Road Maintenance"
	CategoryStreetLighting  RequestCategory = "Street Lighting"
	CategoryTrafficSafety   RequestCategory = "Traffic & Safety"
)

// RequestPriority enumerates urgency.
type RequestPriority string

const (
	PriorityLow      RequestPriority = "Low"
	PriorityMedium   RequestPriority = "Medium"
	PriorityHigh     RequestPriority = "High"
	PriorityCritical RequestPriority = "Critical"
)

// ServiceRequest is one citizen-reported issue. Requests are never deleted;
// status moves only through the transition guard above.
type ServiceRequest struct {
	ID             string
	RequestCode    string // external identifier, REQ-xxxxxxxx
	CitizenID      string
	Title          string
	Description    string
	Category       RequestCategory
	Status         RequestStatus
	Priority       RequestPriority
	Location       string
	ImagePath      *string
	SubmissionDate time.Time
	ResolutionDate *time.Time
}
