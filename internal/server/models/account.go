// Package models holds the server-side persistent records and their public
// projections.
package models

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account statuses exposed in the public view.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// Account is the sole persistent entity. VerificationCode and CodeExpiresAt
// are both nil or both set; a verified account has neither.
type Account struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             string
	IsVerified       bool
	VerificationCode *string
	CodeExpiresAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastLoginAt      *time.Time
}

// SetCode replaces any outstanding challenge with code valid until expiresAt.
func (a *Account) SetCode(code string, expiresAt time.Time) {
	a.VerificationCode = &code
	a.CodeExpiresAt = &expiresAt
}

// ClearCode drops the outstanding challenge.
func (a *Account) ClearCode() {
	a.VerificationCode = nil
	a.CodeExpiresAt = nil
}

// HasPendingCode reports whether a code and its expiry are both present.
func (a *Account) HasPendingCode() bool {
	return a.VerificationCode != nil && a.CodeExpiresAt != nil
}

// CodeExpired reports whether the outstanding code is missing or its expiry
// lies strictly before now. A code is still valid at exactly its expiry.
func (a *Account) CodeExpired(now time.Time) bool {
	if !a.HasPendingCode() {
		return true
	}
	return a.CodeExpiresAt.Before(now)
}

// MarkVerified flips the account to verified, clears the challenge and
// records the authentication time.
func (a *Account) MarkVerified(now time.Time) {
	a.IsVerified = true
	a.ClearCode()
	a.LastLoginAt = &now
	a.UpdatedAt = now
}

func (a *Account) Status() string {
	if a.IsVerified {
		return StatusVerified
	}
	return StatusPending
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	if a.VerificationCode != nil {
		code := *a.VerificationCode
		c.VerificationCode = &code
	}
	if a.CodeExpiresAt != nil {
		t := *a.CodeExpiresAt
		c.CodeExpiresAt = &t
	}
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// AccountView is the public projection of an Account. It never carries the
// password hash or the pending code.
type AccountView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login,omitempty"`
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		Status:      a.Status(),
		IsVerified:  a.IsVerified,
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

// Filter narrows Count. A nil Verified counts every account.
type Filter struct {
	Verified *bool
}

// Stats summarizes the account population for the dashboard.
type Stats struct {
	TotalAccounts    int64 `json:"total_accounts"`
	VerifiedAccounts int64 `json:"verified_accounts"`
}
