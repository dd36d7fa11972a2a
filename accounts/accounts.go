package accounts

import (
	"errors"
	"time"
)

// Session is the single-slot session state embedded in an Account.
// At most one refresh token is live per account; issuing a new pair
// overwrites the previous one. Version is bumped by the store on every
// successful Save and checked on write, so a stale read-modify-write
// fails instead of silently clobbering a newer token pair.
type Session struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	Version      int64  `json:"-"`
}

// Empty reports whether the slot holds no tokens.
func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// Clear drops both tokens. They are always cleared together.
func (s *Session) Clear() {
	s.AccessToken = ""
	s.RefreshToken = ""
}

// Account is the durable identity record. An account carries a
// password hash (registered locally), an external provider ID
// (created through provider login), or both - never neither.
type Account struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	ExternalID   string    `json:"-"`
	PasswordHash string    `json:"-"`
	DateJoined   time.Time `json:"date_joined,omitempty"`
	Session      Session   `json:"-"`
}

// Public is the caller-facing projection of an Account. It never
// includes the password hash, the external ID, or stored tokens.
type Public struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	DateJoined  time.Time `json:"date_joined"`
}

// NewLocalAccount creates an account from a registration. The caller
// supplies an already-hashed password; plaintext never reaches this
// package.
func NewLocalAccount(email, passwordHash string) (*Account, error) {
	if email == "" {
		return nil, errors.New("accounts: email is required")
	}
	if passwordHash == "" {
		return nil, errors.New("accounts: password hash is required")
	}
	return &Account{
		Email:        email,
		PasswordHash: passwordHash,
		DateJoined:   time.Now(),
	}, nil
}

// NewFederatedAccount creates an account from a verified external
// identity. No password hash is set; the account can only log in
// through the provider until a credential is added.
func NewFederatedAccount(externalID, email, displayName string) (*Account, error) {
	if externalID == "" {
		return nil, errors.New("accounts: external ID is required")
	}
	return &Account{
		Email:       email,
		DisplayName: displayName,
		ExternalID:  externalID,
		DateJoined:  time.Now(),
	}, nil
}

// IsLocal reports whether the account holds a password credential.
func (a *Account) IsLocal() bool {
	return a.PasswordHash != ""
}

// IsFederated reports whether the account is linked to an external
// identity provider.
func (a *Account) IsFederated() bool {
	return a.ExternalID != ""
}

// Valid checks the structural invariant: at least one credential path.
func (a *Account) Valid() bool {
	return a.IsLocal() || a.IsFederated()
}

func (a *Account) Public() *Public {
	return &Public{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		DateJoined:  a.DateJoined,
	}
}
