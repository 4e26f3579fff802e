package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/pkg/apperr"
	"github.com/citygate/csrms/pkg/helpers"
)

func newAuthService(users *fakeUserRepo, citizens *fakeCitizenRepo, audit *fakeAuditRepo, queue *fakeQueue) *AuthService {
	return &AuthService{
		Users:       users,
		Citizens:    citizens,
		Audit:       audit,
		Tx:          &fakeTx{},
		JWT:         helpers.NewJWTManager("test-secret", time.Hour),
		Queue:       queue,
		Logger:      testLogger(),
		OTPWindow:   10 * time.Minute,
		MailEnabled: true,
	}
}

func seedUser(users *fakeUserRepo, email, password string, role entity.Role) *entity.User {
	hash, _ := helpers.HashPassword(password)
	return users.add(&entity.User{
		UserCode:     helpers.NewCode("USR"),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
	})
}

func TestRegisterCreatesUserCitizenAndCode(t *testing.T) {
	users := newFakeUserRepo()
	citizens := newFakeCitizenRepo()
	audit := &fakeAuditRepo{}
	queue := &fakeQueue{}
	svc := newAuthService(users, citizens, audit, queue)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "jane@example.com",
		Password: "secret123",
		FullName: "Jane Doe",
		Role:     entity.RoleCitizen,
	}, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Regexp(t, `^USR-[0-9a-f]{8}$`, u.UserCode)

	stored := users.users[u.ID]
	require.NotNil(t, stored)
	require.NotNil(t, stored.OTPCode)
	assert.Len(t, *stored.OTPCode, 6)
	assert.False(t, stored.IsVerified)

	citizen := citizens.citizens[u.ID]
	require.NotNil(t, citizen)
	assert.Regexp(t, `^CIT-[0-9a-f]{8}$`, citizen.CitizenCode)
	assert.Equal(t, entity.PreferEmail, citizen.NotificationPreference)

	assert.Equal(t, entity.ActionRegister, audit.lastAction())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "jane@example.com", queue.jobs[0].To)
	assert.Contains(t, queue.jobs[0].Text, *stored.OTPCode)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, &fakeQueue{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "jane@example.com",
		Password: "secret123",
		FullName: "Jane Again",
		Role:     entity.RoleCitizen,
	}, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

func TestVerifyCodeSignupHappyPath(t *testing.T) {
	users := newFakeUserRepo()
	citizens := newFakeCitizenRepo()
	audit := &fakeAuditRepo{}
	svc := newAuthService(users, citizens, audit, &fakeQueue{})

	u := seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	code := "123456"
	expires := time.Now().Add(5 * time.Minute)
	users.users[u.ID].OTPCode = &code
	users.users[u.ID].OTPExpires = &expires

	res, err := svc.VerifyCode(context.Background(), "jane@example.com", "123456", FlowSignup)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.User.IsVerified)

	stored := users.users[u.ID]
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTPCode, "code must be consumed")
	assert.Equal(t, entity.ActionVerifyEmail, audit.lastAction())

	// a second attempt with the same code must fail
	_, err = svc.VerifyCode(context.Background(), "jane@example.com", "123456", FlowSignup)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential))
}

func TestVerifyCodeRejectsExpiredAndWrong(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, &fakeQueue{})

	u := seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	code := "123456"
	expired := time.Now().Add(-time.Minute)
	users.users[u.ID].OTPCode = &code
	users.users[u.ID].OTPExpires = &expired

	_, err := svc.VerifyCode(context.Background(), "jane@example.com", "123456", FlowSignup)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential), "expired code")

	fresh := time.Now().Add(5 * time.Minute)
	users.users[u.ID].OTPExpires = &fresh
	_, err = svc.VerifyCode(context.Background(), "jane@example.com", "654321", FlowSignup)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential), "wrong code")

	_, err = svc.VerifyCode(context.Background(), "nobody@example.com", "123456", FlowSignup)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential), "unknown email")
}

func TestIssueCodeOverwritesPrevious(t *testing.T) {
	users := newFakeUserRepo()
	queue := &fakeQueue{}
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, queue)

	u := seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	old := "111111"
	expires := time.Now().Add(5 * time.Minute)
	users.users[u.ID].OTPCode = &old
	users.users[u.ID].OTPExpires = &expires

	require.NoError(t, svc.IssueCode(context.Background(), "jane@example.com", FlowReset, ""))

	stored := users.users[u.ID]
	require.NotNil(t, stored.OTPCode)
	assert.NotEqual(t, "111111", *stored.OTPCode)

	// the superseded code no longer verifies
	_, err := svc.VerifyCode(context.Background(), "jane@example.com", "111111", FlowReset)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential))

	require.Len(t, queue.jobs, 1)
	assert.Contains(t, queue.jobs[0].Subject, "Password Reset")
}

func TestIssueCodeUnknownEmail(t *testing.T) {
	users := newFakeUserRepo()
	queue := &fakeQueue{}
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, queue)

	// reset flow reports the missing account
	err := svc.IssueCode(context.Background(), "nobody@example.com", FlowReset, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	// signup flow stays silent to avoid enumeration
	err = svc.IssueCode(context.Background(), "nobody@example.com", FlowSignup, "")
	assert.NoError(t, err)
	assert.Empty(t, queue.jobs)
}

func TestVerifyResetCodeLeavesCodeInPlace(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, &fakeQueue{})

	u := seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	code := "123456"
	expires := time.Now().Add(5 * time.Minute)
	users.users[u.ID].OTPCode = &code
	users.users[u.ID].OTPExpires = &expires

	res, err := svc.VerifyCode(context.Background(), "jane@example.com", "123456", FlowReset)
	require.NoError(t, err)
	assert.Empty(t, res.Token, "reset verification issues no session")

	// the code survives so the reset call can present it again
	require.NotNil(t, users.users[u.ID].OTPCode)
	assert.Equal(t, "123456", *users.users[u.ID].OTPCode)
}

func TestResetPasswordConsumesCode(t *testing.T) {
	users := newFakeUserRepo()
	audit := &fakeAuditRepo{}
	svc := newAuthService(users, newFakeCitizenRepo(), audit, &fakeQueue{})

	u := seedUser(users, "jane@example.com", "oldpass123", entity.RoleCitizen)
	oldHash := users.users[u.ID].PasswordHash
	code := "123456"
	expires := time.Now().Add(5 * time.Minute)
	users.users[u.ID].OTPCode = &code
	users.users[u.ID].OTPExpires = &expires

	err := svc.ResetPassword(context.Background(), "jane@example.com", "123456", "newpass456", "10.0.0.1")
	require.NoError(t, err)

	stored := users.users[u.ID]
	assert.NotEqual(t, oldHash, stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "newpass456"))
	assert.Nil(t, stored.OTPCode, "code must be cleared")
	assert.Equal(t, entity.ActionPasswordReset, audit.lastAction())

	// replay with the consumed code fails
	err = svc.ResetPassword(context.Background(), "jane@example.com", "123456", "thirdpass789", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential))
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepo()
	citizens := newFakeCitizenRepo()
	svc := newAuthService(users, citizens, &fakeAuditRepo{}, &fakeQueue{})

	u := seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	_ = citizens.Create(context.Background(), &entity.Citizen{CitizenCode: "CIT-12345678", UserID: u.ID})

	res, err := svc.Login(context.Background(), "jane@example.com", "secret123", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.JWT.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, string(entity.RoleCitizen), claims.Role)

	_, err = svc.Login(context.Background(), "jane@example.com", "wrongpass", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential))

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret123", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredential))
}

func TestLoginCitizenWithoutProfileForbidden(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, &fakeQueue{})

	seedUser(users, "jane@example.com", "secret123", entity.RoleCitizen)
	_, err := svc.Login(context.Background(), "jane@example.com", "secret123", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestRegisterMailFailureDoesNotFailRegistration(t *testing.T) {
	users := newFakeUserRepo()
	queue := &fakeQueue{fail: assert.AnError}
	svc := newAuthService(users, newFakeCitizenRepo(), &fakeAuditRepo{}, queue)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "jane@example.com",
		Password: "secret123",
		FullName: "Jane Doe",
		Role:     entity.RoleCitizen,
	}, "")
	require.NoError(t, err)
	assert.NotNil(t, users.users[u.ID])
}
