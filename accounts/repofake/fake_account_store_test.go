package fakeaccountstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/altura-labs/go-token-auth/accounts"
	fakeaccountstore "github.com/altura-labs/go-token-auth/accounts/repofake"
	apperrors "github.com/altura-labs/go-token-auth/internal/errors"
)

func mustLocal(t *testing.T, email string) *accounts.Account {
	t.Helper()
	account, err := accounts.NewLocalAccount(email, "hashed")
	require.NoError(t, err)
	return account
}

func TestInsertAssignsIDAndEnforcesEmailUniqueness(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	created, err := store.Insert(mustLocal(t, "a@x.com"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = store.Insert(mustLocal(t, "a@x.com"))
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInsertEnforcesExternalIDUniqueness(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	first, err := accounts.NewFederatedAccount("ext-1", "a@x.com", "")
	require.NoError(t, err)
	_, err = store.Insert(first)
	require.NoError(t, err)

	second, err := accounts.NewFederatedAccount("ext-1", "b@x.com", "")
	require.NoError(t, err)
	_, err = store.Insert(second)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInsertRejectsAccountWithoutCredential(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	_, err := store.Insert(&accounts.Account{Email: "a@x.com"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestFindByTokenMatchesKind(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	created, err := store.Insert(mustLocal(t, "a@x.com"))
	require.NoError(t, err)
	created.Session.AccessToken = "access-1"
	created.Session.RefreshToken = "refresh-1"
	require.NoError(t, store.Save(created))

	byAccess, err := store.FindByToken("access-1", accounts.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.ID, byAccess.ID)

	byRefresh, err := store.FindByToken("refresh-1", accounts.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, created.ID, byRefresh.ID)

	// Kind is part of the lookup: an access token does not match the
	// refresh slot.
	_, err = store.FindByToken("access-1", accounts.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.FindByToken("", accounts.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveIsCompareAndSwapOnSessionVersion(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	created, err := store.Insert(mustLocal(t, "a@x.com"))
	require.NoError(t, err)

	// Two callers read the same state.
	first, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	second, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)

	first.Session.AccessToken = "winner"
	require.NoError(t, store.Save(first))

	// The loser's write carries a stale version and must fail rather
	// than clobber the winner's token pair.
	second.Session.AccessToken = "loser"
	err = store.Save(second)
	require.ErrorIs(t, err, apperrors.ErrStore)

	current, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	require.Equal(t, "winner", current.Session.AccessToken)
	require.Equal(t, created.ID, current.ID)
}

func TestSaveUpdatesCallerVersion(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	created, err := store.Insert(mustLocal(t, "a@x.com"))
	require.NoError(t, err)

	created.Session.AccessToken = "one"
	require.NoError(t, store.Save(created))

	// A second save with the same in-hand copy succeeds because Save
	// hands back the bumped version.
	created.Session.AccessToken = "two"
	require.NoError(t, store.Save(created))
}

func TestFindCopiesDoNotAliasStoredState(t *testing.T) {
	store := fakeaccountstore.NewFakeAccountStore()

	_, err := store.Insert(mustLocal(t, "a@x.com"))
	require.NoError(t, err)

	loaded, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	loaded.Session.AccessToken = "mutated locally"

	fresh, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	require.Empty(t, fresh.Session.AccessToken)
}
