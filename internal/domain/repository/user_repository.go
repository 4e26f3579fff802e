package repository

import (
	"context"
	"time"

	"github.com/citygate/csrms/internal/domain/entity"
)

// UserRepository defines user-related database operations. Lookups return
// nil without error when no active user matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByEmailForUpdate takes the user's row lock so concurrent OTP
	// issue/verify calls on the same account serialize. Only meaningful
	// inside a transaction.
	GetByEmailForUpdate(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// SetOTP stores a new challenge, overwriting any previous one.
	SetOTP(ctx context.Context, id, code string, expires time.Time) error
	// ClearOTP nulls both the code and the expiry.
	ClearOTP(ctx context.Context, id string) error
	// MarkVerified sets the verification flag and clears the OTP slot.
	MarkVerified(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

// CitizenRepository manages the citizen profile row and its counters.
type CitizenRepository interface {
	Create(ctx context.Context, c *entity.Citizen) error
	GetByUserID(ctx context.Context, userID string) (*entity.Citizen, error)
	// IncrementSubmitted and IncrementResolved bump the cumulative
	// counters with an atomic in-database increment, never a
	// read-modify-write from application memory.
	IncrementSubmitted(ctx context.Context, citizenID string) error
	IncrementResolved(ctx context.Context, citizenID string) error
	UpdateNotificationPreference(ctx context.Context, userID string, pref entity.NotificationPreference) error
}
