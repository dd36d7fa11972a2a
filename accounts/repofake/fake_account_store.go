package fakeaccountstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/altura-labs/go-token-auth/accounts"
	apperrors "github.com/altura-labs/go-token-auth/internal/errors"
)

var _ accounts.Store = (*FakeAccountStore)(nil)

// FakeAccountStore is an in-memory account store safe for concurrent
// use. Accounts are copied on the way in and out so callers never
// share the stored record.
type FakeAccountStore struct {
	accounts    map[string]*accounts.Account
	emailIds    map[string]string // email to account id
	externalIds map[string]string // external provider id to account id
	lock        sync.RWMutex
}

func NewFakeAccountStore() *FakeAccountStore {
	return &FakeAccountStore{
		accounts:    make(map[string]*accounts.Account),
		emailIds:    make(map[string]string),
		externalIds: make(map[string]string),
	}
}

func (as *FakeAccountStore) Insert(account *accounts.Account) (*accounts.Account, error) {
	as.lock.Lock()
	defer as.lock.Unlock()

	if !account.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "FakeAccountStore.Insert: account has no credential")
	}
	if account.Email != "" {
		if _, ok := as.emailIds[account.Email]; ok {
			return nil, apperrors.Wrapf(apperrors.ErrConflict, "FakeAccountStore.Insert: email taken")
		}
	}
	if account.ExternalID != "" {
		if _, ok := as.externalIds[account.ExternalID]; ok {
			return nil, apperrors.Wrapf(apperrors.ErrConflict, "FakeAccountStore.Insert: external ID taken")
		}
	}

	stored := *account
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	as.accounts[stored.ID] = &stored
	if stored.Email != "" {
		as.emailIds[stored.Email] = stored.ID
	}
	if stored.ExternalID != "" {
		as.externalIds[stored.ExternalID] = stored.ID
	}

	result := stored
	return &result, nil
}

// Save overwrites an existing account record. The write is a
// compare-and-swap on Session.Version: a caller holding a stale copy
// gets a store fault instead of clobbering a newer session slot. On
// success the caller's copy carries the new version.
func (as *FakeAccountStore) Save(account *accounts.Account) error {
	as.lock.Lock()
	defer as.lock.Unlock()

	stored, ok := as.accounts[account.ID]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrStore, "FakeAccountStore.Save: unknown account")
	}
	if stored.Session.Version != account.Session.Version {
		return apperrors.Wrapf(apperrors.ErrStore, "FakeAccountStore.Save: stale session version")
	}

	updated := *account
	updated.Session.Version++
	as.accounts[updated.ID] = &updated
	account.Session.Version = updated.Session.Version
	return nil
}

func (as *FakeAccountStore) FindByEmail(email string) (*accounts.Account, error) {
	as.lock.RLock()
	defer as.lock.RUnlock()

	id, ok := as.emailIds[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	result := *as.accounts[id]
	return &result, nil
}

func (as *FakeAccountStore) FindByExternalID(externalID string) (*accounts.Account, error) {
	as.lock.RLock()
	defer as.lock.RUnlock()

	id, ok := as.externalIds[externalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	result := *as.accounts[id]
	return &result, nil
}

func (as *FakeAccountStore) FindByToken(token string, kind accounts.TokenKind) (*accounts.Account, error) {
	as.lock.RLock()
	defer as.lock.RUnlock()

	if token == "" {
		return nil, apperrors.ErrNotFound
	}
	for _, account := range as.accounts {
		stored := account.Session.RefreshToken
		if kind == accounts.AccessToken {
			stored = account.Session.AccessToken
		}
		if stored == token {
			result := *account
			return &result, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
