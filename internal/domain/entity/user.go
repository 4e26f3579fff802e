package entity

import "time"

// Role enumerates the two account kinds the system knows about.
type Role string

const (
	RoleCitizen       Role = "Citizen"
	RoleAdministrator Role = "Administrator"
)

// User is the identity record. Passwords are stored as bcrypt hashes.
// OTPCode and OTPExpires are both set or both nil; a single slot holds the
// one outstanding verification challenge per user, so issuing a new code
// invalidates the previous one.
type User struct {
	ID               string
	UserCode         string // external identifier, USR-xxxxxxxx
	Email            string
	PasswordHash     string
	FullName         string
	PhoneNumber      string
	Address          string
	Role             Role
	IsVerified       bool
	IsActive         bool
	OTPCode          *string
	OTPExpires       *time.Time
	RegistrationDate time.Time
}

// HasValidOTP reports whether code matches the stored challenge and the
// expiry window has not passed.
func (u *User) HasValidOTP(code string, now time.Time) bool {
	if u.OTPCode == nil || u.OTPExpires == nil {
		return false
	}
	return *u.OTPCode == code && !u.OTPExpires.Before(now)
}
