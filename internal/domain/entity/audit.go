package entity

import "time"

// Audit action kinds recorded by the engine.
const (
	ActionRegister          = "REGISTER"
	ActionVerifyEmail       = "VERIFY_EMAIL"
	ActionPasswordReset     = "PASSWORD_RESET"
	ActionChangePassword    = "CHANGE_PASSWORD"
	ActionUpdateProfile     = "UPDATE_PROFILE"
	ActionDeactivateAccount = "DEACTIVATE_ACCOUNT"
	ActionRequestCreate     = "REQUEST_CREATE"
	ActionRequestStatus     = "REQUEST_STATUS_UPDATE"
	ActionRequestClosed     = "REQUEST_CLOSED"
)

// AuditEntry is an immutable record of a state-changing action. Entries are
// written inside the same transaction as the change they document and are
// never updated or deleted.
type AuditEntry struct {
	ID        string
	LogCode   string // external identifier, LOG-xxxxxxxx
	UserID    *string
	Action    string
	Details   string
	IPAddress *string
	CreatedAt time.Time
}
