package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
	"github.com/citygate/csrms/pkg/apperr"
	"github.com/citygate/csrms/pkg/helpers"
	"github.com/citygate/csrms/pkg/mailer"
)

// OTPFlow names the workflow an email code belongs to. The code slot on the
// user row is shared between flows; the flow only selects the side effects
// that run on a successful verification.
type OTPFlow string

const (
	FlowSignup OTPFlow = "signup"
	FlowReset  OTPFlow = "reset"
)

type AuthService struct {
	Users       repository.UserRepository
	Citizens    repository.CitizenRepository
	Audit       repository.AuditRepository
	Tx          repository.TxManager
	JWT         *helpers.JWTManager
	Queue       EmailQueue
	Logger      *logrus.Logger
	OTPWindow   time.Duration
	MailEnabled bool
}

type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Address     string
	Role        entity.Role
}

type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register creates the user row, a citizen profile for citizen accounts, and
// the first verification code, all in one transaction. The verification email
// goes out only after the transaction commits.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, ip string) (*entity.User, error) {
	existing, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.NewDependency("load user", err)
	}
	if existing != nil {
		return nil, apperr.NewConflict("email is already registered")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.NewInternal("hash password", err)
	}

	user := &entity.User{
		UserCode:     helpers.NewCode("USR"),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		Role:         in.Role,
		IsActive:     true,
	}

	var code string
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Users.Create(ctx, user); err != nil {
			return apperr.NewDependency("create user", err)
		}
		if in.Role == entity.RoleCitizen {
			citizen := &entity.Citizen{
				CitizenCode:            helpers.NewCode("CIT"),
				UserID:                 user.ID,
				NotificationPreference: entity.PreferEmail,
			}
			if err := s.Citizens.Create(ctx, citizen); err != nil {
				return apperr.NewDependency("create citizen profile", err)
			}
		}
		code = helpers.GenOTPCode()
		expires := time.Now().Add(s.OTPWindow)
		if err := s.Users.SetOTP(ctx, user.ID, code, expires); err != nil {
			return apperr.NewDependency("store verification code", err)
		}
		entry := auditEntry(user.ID, entity.ActionRegister, fmt.Sprintf("Registered %s (%s)", user.UserCode, user.Email), ip)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendCode(ctx, user.Email, code, FlowSignup)
	return user, nil
}

// Login authenticates with email and password and issues a bearer token.
// Citizen accounts must have a citizen profile on record.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.NewDependency("load user", err)
	}
	if user == nil {
		return nil, apperr.NewInvalidCredential("invalid email or password")
	}
	if !helpers.CompareHashAndPassword(user.PasswordHash, password) {
		return nil, apperr.NewInvalidCredential("invalid email or password")
	}
	if user.Role == entity.RoleCitizen {
		citizen, err := s.Citizens.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, apperr.NewDependency("load citizen profile", err)
		}
		if citizen == nil {
			return nil, apperr.NewForbidden("no citizen profile for this account")
		}
	}

	token, expiresAt, err := s.JWT.GenerateToken(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, apperr.NewInternal("sign token", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// IssueCode generates a fresh code for the given flow, overwriting any
// previous one, and emails it. The row lock serializes concurrent reissues so
// only the last generated code survives. For the signup flow an unknown email
// is silently accepted to avoid account enumeration; the reset flow reports it.
func (s *AuthService) IssueCode(ctx context.Context, email string, flow OTPFlow, ip string) error {
	var (
		user *entity.User
		code string
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.Users.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return apperr.NewDependency("load user", err)
		}
		if user == nil {
			if flow == FlowSignup {
				return nil
			}
			return apperr.NewNotFound("user")
		}
		code = helpers.GenOTPCode()
		expires := time.Now().Add(s.OTPWindow)
		if err := s.Users.SetOTP(ctx, user.ID, code, expires); err != nil {
			return apperr.NewDependency("store verification code", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if user == nil {
		s.Logger.WithField("email", email).Info("code requested for unknown email, ignoring")
		return nil
	}

	s.sendCode(ctx, user.Email, code, flow)
	return nil
}

// VerifyCode checks the submitted code against the user's current one. For
// the signup flow a match marks the account verified, clears the code and
// issues a token. For the reset flow the code is left in place so the
// follow-up ResetPassword call can present it again.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string, flow OTPFlow) (*AuthResult, error) {
	if flow == FlowReset {
		user, err := s.Users.GetByEmail(ctx, email)
		if err != nil {
			return nil, apperr.NewDependency("load user", err)
		}
		if user == nil || !user.HasValidOTP(code, time.Now()) {
			return nil, apperr.NewInvalidCredential("invalid or expired code")
		}
		return &AuthResult{User: user}, nil
	}

	var user *entity.User
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.Users.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return apperr.NewDependency("load user", err)
		}
		if user == nil || !user.HasValidOTP(code, time.Now()) {
			return apperr.NewInvalidCredential("invalid or expired code")
		}
		if err := s.Users.MarkVerified(ctx, user.ID); err != nil {
			return apperr.NewDependency("mark user verified", err)
		}
		entry := auditEntry(user.ID, entity.ActionVerifyEmail, fmt.Sprintf("Verified email for %s", user.UserCode), "")
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.IsVerified = true
	token, expiresAt, err := s.JWT.GenerateToken(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, apperr.NewInternal("sign token", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ResetPassword consumes a valid reset code: the new password is stored and
// the code cleared in the same transaction, so a code can complete at most
// one reset.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword, ip string) error {
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperr.NewInternal("hash password", err)
	}
	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.Users.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return apperr.NewDependency("load user", err)
		}
		if user == nil || !user.HasValidOTP(code, time.Now()) {
			return apperr.NewInvalidCredential("invalid or expired code")
		}
		if err := s.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return apperr.NewDependency("update password", err)
		}
		if err := s.Users.ClearOTP(ctx, user.ID); err != nil {
			return apperr.NewDependency("clear verification code", err)
		}
		entry := auditEntry(user.ID, entity.ActionPasswordReset, fmt.Sprintf("Password reset for %s", user.UserCode), ip)
		if err := s.Audit.Record(ctx, entry); err != nil {
			return apperr.NewDependency("record audit log", err)
		}
		return nil
	})
}

func (s *AuthService) sendCode(ctx context.Context, email, code string, flow OTPFlow) {
	if !s.MailEnabled || s.Queue == nil {
		return
	}
	minutes := int(s.OTPWindow.Minutes())
	job := mailer.EmailJob{To: email}
	switch flow {
	case FlowReset:
		job.Subject = "CSRMS Password Reset Code"
		job.Text = fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, minutes)
	default:
		job.Subject = "CSRMS Verification Code"
		job.Text = fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes)
	}
	if err := s.Queue.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("email", email).Warn("failed to enqueue code email")
	}
}
