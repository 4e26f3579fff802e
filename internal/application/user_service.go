package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
	"github.com/citygate/csrms/pkg/apperr"
	"github.com/citygate/csrms/pkg/helpers"
)

type UserService struct {
	Users    repository.UserRepository
	Citizens repository.CitizenRepository
	Requests repository.RequestRepository
	Audit    repository.AuditRepository
	Tx       repository.TxManager
	Logger   *logrus.Logger
}

// Profile bundles the account row with its citizen profile, when one exists.
type Profile struct {
	User    *entity.User
	Citizen *entity.Citizen
}

type UpdateProfileInput struct {
	FullName               string
	PhoneNumber            string
	Address                string
	NotificationPreference entity.NotificationPreference
}

// Dashboard is the citizen landing payload: profile plus recent activity.
type Dashboard struct {
	Profile  Profile
	Recent   []entity.ServiceRequest
	Counts   *repository.StatusCounts
	Counters struct {
		Submitted int
		Resolved  int
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.NewDependency("load user", err)
	}
	if user == nil {
		return nil, apperr.NewNotFound("user")
	}
	citizen, err := s.Citizens.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.NewDependency("load citizen profile", err)
	}
	return &Profile{User: user, Citizen: citizen}, nil
}

// UpdateProfile applies partial updates: empty fields keep their current
// value. A preference change goes through the citizen profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, ip string) (*Profile, error) {
	var out *Profile
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			return apperr.NewDependency("load user", err)
		}
		if user == nil {
			return apperr.NewNotFound("user")
		}
		if in.FullName != "" {
			user.FullName = in.FullName
		}
		if in.PhoneNumber != "" {
			user.PhoneNumber = in.PhoneNumber
		}
		if in.Address != "" {
			user.Address = in.Address
		}
		if err := s.Users.UpdateProfile(ctx, user); err != nil {
			return apperr.NewDependency("update profile", err)
		}
		citizen, err := s.Citizens.GetByUserID(ctx, userID)
		if err != nil {
			return apperr.NewDependency("load citizen profile", err)
		}
		if citizen != nil && in.NotificationPreference != "" {
			if err := s.Citizens.UpdateNotificationPreference(ctx, userID, in.NotificationPreference); err != nil {
				return apperr.NewDependency("update notification preference", err)
			}
			citizen.NotificationPreference = in.NotificationPreference
		}
		entry := auditEntry(userID, entity.ActionUpdateProfile, fmt.Sprintf("Updated profile for %s", user.UserCode), ip)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		out = &Profile{User: user, Citizen: citizen}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next, ip string) error {
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return apperr.NewInternal("hash password", err)
	}
	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			return apperr.NewDependency("load user", err)
		}
		if user == nil {
			return apperr.NewNotFound("user")
		}
		if !helpers.CompareHashAndPassword(user.PasswordHash, current) {
			return apperr.NewInvalidCredential("current password is incorrect")
		}
		if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
			return apperr.NewDependency("update password", err)
		}
		entry := auditEntry(userID, entity.ActionChangePassword, fmt.Sprintf("Password changed for %s", user.UserCode), ip)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
}

// Deactivate soft-deletes the account. The row survives for audit history
// but no longer authenticates.
func (s *UserService) Deactivate(ctx context.Context, userID, ip string) error {
	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			return apperr.NewDependency("load user", err)
		}
		if user == nil {
			return apperr.NewNotFound("user")
		}
		if err := s.Users.Deactivate(ctx, userID); err != nil {
			return apperr.NewDependency("deactivate user", err)
		}
		entry := auditEntry(userID, entity.ActionDeactivateAccount, fmt.Sprintf("Deactivated %s", user.UserCode), ip)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
}

// GetDashboard returns the citizen's profile, lifetime counters and their
// five most recent requests.
func (s *UserService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Profile: *profile}
	if profile.Citizen != nil {
		d.Counters.Submitted = profile.Citizen.TotalRequestsSubmitted
		d.Counters.Resolved = profile.Citizen.TotalRequestsResolved
	}
	recent, err := s.Requests.ListByOwner(ctx, userID, 5)
	if err != nil {
		return nil, apperr.NewDependency("list requests", err)
	}
	d.Recent = recent
	counts, err := s.Requests.StatusCounts(ctx, userID)
	if err != nil {
		return nil, apperr.NewDependency("count requests", err)
	}
	d.Counts = counts
	return d, nil
}
