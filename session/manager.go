// Package session orchestrates the token lifecycle: credential
// verification gates issuance, issued pairs live in the account's
// single session slot, and refresh authority comes from the store,
// not from signature validity alone.
package session

import (
	"github.com/pkg/errors"

	"github.com/altura-labs/go-token-auth/accounts"
	"github.com/altura-labs/go-token-auth/credentials"
	apperrors "github.com/altura-labs/go-token-auth/internal/errors"
	"github.com/altura-labs/go-token-auth/provider"
	"github.com/altura-labs/go-token-auth/token"
)

// TokenPair is the result of a successful issuance.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccountKind classifies how an email can authenticate.
type AccountKind int

const (
	AccountNotFound AccountKind = iota
	AccountExternal
	AccountLocal
)

// Manager runs login, refresh, and logout against the account store
// and token codec.
type Manager struct {
	store         accounts.Store
	codec         *token.Codec
	verifier      *credentials.Verifier
	rotateRefresh bool
}

type ManagerOption func(*Manager)

// WithRefreshRotation controls whether a successful refresh also
// rotates the refresh token. Default is on.
func WithRefreshRotation(rotate bool) ManagerOption {
	return func(m *Manager) {
		m.rotateRefresh = rotate
	}
}

// NewManager initializes a new Manager with required dependencies.
func NewManager(store accounts.Store, codec *token.Codec, verifier *credentials.Verifier, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] account store is required")
	}
	if codec == nil {
		return nil, errors.New("[NewManager] token codec is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewManager] credential verifier is required")
	}

	m := &Manager{
		store:         store,
		codec:         codec,
		verifier:      verifier,
		rotateRefresh: true,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Register creates a local account. The plaintext is hashed before it
// is stored and never appears in the returned projection.
func (m *Manager) Register(email, password string) (*accounts.Public, error) {
	if email == "" || password == "" {
		return nil, errors.Wrap(apperrors.ErrValidation, "[Manager.Register] email and password are required")
	}

	hash, err := m.verifier.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Register] hash")
	}

	account, err := accounts.NewLocalAccount(email, hash)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrValidation, err.Error())
	}

	created, err := m.store.Insert(account)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, errors.Wrap(apperrors.ErrConflict, "[Manager.Register] email taken")
		}
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	return created.Public(), nil
}

// Login verifies the credential and issues a fresh token pair. An
// unknown email and a wrong password are indistinguishable to the
// caller.
func (m *Manager) Login(email, password string) (*TokenPair, error) {
	account, err := m.store.FindByEmail(email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.Wrap(apperrors.ErrBadCredentials, "[Manager.Login] unknown email")
		}
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	if !m.verifier.Verify(password, account.PasswordHash) {
		return nil, errors.Wrap(apperrors.ErrBadCredentials, "[Manager.Login] password mismatch")
	}

	pair, err := m.issuePair(account)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login]")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token (and a new
// refresh token when rotation is on). Signature validity alone is not
// authority: the presented token must also occupy the account's
// session slot, so a superseded token is rejected before its stated
// expiry.
func (m *Manager) Refresh(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.Wrap(apperrors.ErrUnauthenticated, "[Manager.Refresh] missing refresh token")
	}

	result := m.codec.Verify(refreshToken, token.Refresh)
	if !result.Valid() {
		return nil, errors.Wrapf(apperrors.ErrUnauthenticated, "[Manager.Refresh] refresh token %s", result.Reason)
	}

	account, err := m.store.FindByToken(refreshToken, accounts.RefreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.Wrap(apperrors.ErrUnauthenticated, "[Manager.Refresh] refresh token superseded")
		}
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	accessToken, err := m.codec.IssueAccess(account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Refresh] IssueAccess")
	}

	nextRefresh := refreshToken
	if m.rotateRefresh {
		nextRefresh, err = m.codec.IssueRefresh(account.Email)
		if err != nil {
			return nil, errors.Wrap(err, "[Manager.Refresh] IssueRefresh")
		}
	}

	account.Session.AccessToken = accessToken
	account.Session.RefreshToken = nextRefresh
	if err := m.store.Save(account); err != nil {
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: nextRefresh}, nil
}

// Logout clears the account's session slot. The account is resolved
// by either stored token; once the slot is cleared a repeat call with
// the same token reports Unauthenticated.
func (m *Manager) Logout(rawToken string) error {
	if rawToken == "" {
		return errors.Wrap(apperrors.ErrUnauthenticated, "[Manager.Logout] missing token")
	}

	account, err := m.store.FindByToken(rawToken, accounts.AccessToken)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		account, err = m.store.FindByToken(rawToken, accounts.RefreshToken)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return errors.Wrap(apperrors.ErrUnauthenticated, "[Manager.Logout] no account holds token")
		}
		return errors.Wrap(apperrors.ErrStore, err.Error())
	}

	account.Session.Clear()
	if err := m.store.Save(account); err != nil {
		return errors.Wrap(apperrors.ErrStore, err.Error())
	}
	return nil
}

// ProviderLogin maps a verified external identity to a local account
// and issues tokens through the same path as Login. A locally
// registered account with the same email is never silently merged.
func (m *Manager) ProviderLogin(identity provider.Identity) (*TokenPair, error) {
	if identity.ExternalID == "" {
		return nil, errors.Wrap(apperrors.ErrValidation, "[Manager.ProviderLogin] external ID is required")
	}

	account, err := m.store.FindByExternalID(identity.ExternalID)
	if err == nil {
		pair, issueErr := m.issuePair(account)
		if issueErr != nil {
			return nil, errors.Wrap(issueErr, "[Manager.ProviderLogin]")
		}
		return pair, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	if identity.Email != "" {
		existing, err := m.store.FindByEmail(identity.Email)
		if err == nil {
			if !existing.IsFederated() {
				return nil, errors.Wrap(apperrors.ErrAccountExistsLocally, "[Manager.ProviderLogin] email registered locally")
			}
			// Email held by an account linked to a different external ID.
			return nil, errors.Wrap(apperrors.ErrConflict, "[Manager.ProviderLogin] email linked to another identity")
		}
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, errors.Wrap(apperrors.ErrStore, err.Error())
		}
	}

	account, err = accounts.NewFederatedAccount(identity.ExternalID, identity.Email, identity.DisplayName)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrValidation, err.Error())
	}

	created, err := m.store.Insert(account)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, errors.Wrap(apperrors.ErrConflict, "[Manager.ProviderLogin] identity taken")
		}
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	pair, err := m.issuePair(created)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.ProviderLogin]")
	}
	return pair, nil
}

// LookupAccountKind reports how an email can authenticate. Backs the
// pre-login account check endpoint.
func (m *Manager) LookupAccountKind(email string) (AccountKind, error) {
	account, err := m.store.FindByEmail(email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return AccountNotFound, nil
		}
		return AccountNotFound, errors.Wrap(apperrors.ErrStore, err.Error())
	}
	if account.IsLocal() {
		return AccountLocal, nil
	}
	return AccountExternal, nil
}

// CheckAccessToken verifies a presented access token without touching
// the store.
func (m *Manager) CheckAccessToken(rawToken string) token.VerifyResult {
	return m.codec.Verify(rawToken, token.Access)
}

// issuePair mints a fresh access+refresh pair, overwrites the session
// slot, and persists. Tokens are not valid until the write lands:
// refresh authority is store-confirmed, so a failed save means no
// tokens were issued and the caller must retry.
func (m *Manager) issuePair(account *accounts.Account) (*TokenPair, error) {
	accessToken, err := m.codec.IssueAccess(account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "IssueAccess")
	}
	refreshToken, err := m.codec.IssueRefresh(account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "IssueRefresh")
	}

	account.Session.AccessToken = accessToken
	account.Session.RefreshToken = refreshToken
	if err := m.store.Save(account); err != nil {
		return nil, errors.Wrap(apperrors.ErrStore, err.Error())
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
