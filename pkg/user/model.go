package user

import (
	"log/slog"
	"time"

	"github.com/jinzhu/copier"
)

// Built-in roles and statuses. Any other role string may be assigned at approval.
const (
	RoleAdmin   = "Admin"
	RolePending = "Pending"

	StatusActive  = "active"
	StatusPending = "pending"
)

// User is the stored account record. Attribute names match the legacy users
// table so existing items decode unchanged.
type User struct {
	UserID      string     `json:"userId" dynamodbav:"userId"`
	Email       string     `json:"email" dynamodbav:"email"`
	Name        string     `json:"name" dynamodbav:"name"`
	Password    string     `json:"password" dynamodbav:"password"`
	Role        string     `json:"role" dynamodbav:"role"`
	Status      string     `json:"status" dynamodbav:"status"`
	GoogleID    string     `json:"googleId,omitempty" dynamodbav:"googleId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" dynamodbav:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty" dynamodbav:"lastLogin,omitempty"`
	OTP         string     `json:"otp,omitempty" dynamodbav:"otp,omitempty"`
	OTPExpiry   *time.Time `json:"otpExpiry,omitempty" dynamodbav:"otpExpiry,omitempty"`
	Token       string     `json:"token,omitempty" dynamodbav:"token,omitempty"`
	TokenExpiry *time.Time `json:"tokenExpiry,omitempty" dynamodbav:"tokenExpiry,omitempty"`
}

// IsActive reports whether the account may complete authentication.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// IsAdmin reports whether the account is an active administrator.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin && u.Status == StatusActive
}

// PublicUser is the client-facing view of a User. It whitelists fields, so
// credentials added to User never leak unless added here.
type PublicUser struct {
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	GoogleID  string     `json:"googleId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// ToPublic projects the record onto its public view.
func (u User) ToPublic() PublicUser {
	var p PublicUser
	if err := copier.Copy(&p, &u); err != nil {
		slog.Error("Failed copying user to public view", "userId", u.UserID, "err", err)
	}
	return p
}

// ToPublicList projects a slice of records.
func ToPublicList(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublic())
	}
	return out
}

// Credential is a short-lived secret with an absolute expiry.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the credential is still usable at now.
// A credential is accepted strictly before its expiry.
func (c Credential) Valid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// UserUpdate describes attribute changes applied by UserRepository.UpdateUser.
// Nil fields are left untouched. Setting a credential takes precedence over
// clearing it. ExpectOTP and ExpectToken are preconditions on the stored
// values; when they do not hold the update fails with ErrConditionFailed.
type UserUpdate struct {
	Role      *string
	Status    *string
	LastLogin *time.Time

	OTP      *Credential
	ClearOTP bool

	Token      *Credential
	ClearToken bool

	ExpectOTP   *string
	ExpectToken *string
}

// IsEmpty reports whether the update changes nothing.
func (upd UserUpdate) IsEmpty() bool {
	return upd.Role == nil && upd.Status == nil && upd.LastLogin == nil &&
		upd.OTP == nil && !upd.ClearOTP && upd.Token == nil && !upd.ClearToken
}

func (upd UserUpdate) check(cur User) error {
	if upd.ExpectOTP != nil && cur.OTP != *upd.ExpectOTP {
		return ErrConditionFailed
	}
	if upd.ExpectToken != nil && cur.Token != *upd.ExpectToken {
		return ErrConditionFailed
	}
	return nil
}

func (upd UserUpdate) apply(u *User) {
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.LastLogin != nil {
		t := *upd.LastLogin
		u.LastLogin = &t
	}
	if upd.ClearOTP {
		u.OTP, u.OTPExpiry = "", nil
	}
	if upd.OTP != nil {
		exp := upd.OTP.ExpiresAt
		u.OTP, u.OTPExpiry = upd.OTP.Value, &exp
	}
	if upd.ClearToken {
		u.Token, u.TokenExpiry = "", nil
	}
	if upd.Token != nil {
		exp := upd.Token.ExpiresAt
		u.Token, u.TokenExpiry = upd.Token.Value, &exp
	}
}

// Helpers for building updates.

func StringPtr(s string) *string { return &s }

func TimePtr(t time.Time) *time.Time { return &t }
