package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/altura-labs/go-token-auth/accounts"
	fakeaccountstore "github.com/altura-labs/go-token-auth/accounts/repofake"
	"github.com/altura-labs/go-token-auth/credentials"
	"github.com/altura-labs/go-token-auth/internal/config"
	"github.com/altura-labs/go-token-auth/provider"
	"github.com/altura-labs/go-token-auth/server"
	"github.com/altura-labs/go-token-auth/session"
	"github.com/altura-labs/go-token-auth/token"
)

const (
	testEmail    = "a@x.com"
	testPassword = "pw"
)

// testConfig satisfies config.Config without reading the environment.
type testConfig struct {
	config.EnvVars
	config.Cors
	config.Security
	config.Provider
}

func (testConfig) GetAccessTokenSecret() string         { return "access-secret-1" }
func (testConfig) GetRefreshTokenSecret() string        { return "refresh-secret-1" }
func (testConfig) GetAccessTokenExpiry() time.Duration  { return 100 * time.Second }
func (testConfig) GetRefreshTokenExpiry() time.Duration { return 24 * time.Hour }
func (testConfig) GetBcryptCost() int                   { return 4 }

type testFixture struct {
	store   *fakeaccountstore.FakeAccountStore
	server  *server.Server
	manager *session.Manager
}

func setupTestFixture(t *testing.T, idp provider.Provider) *testFixture {
	t.Helper()

	cfg := testConfig{}
	codec, err := token.NewCodec(cfg.GetAccessTokenSecret(), cfg.GetRefreshTokenSecret(),
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()),
	)
	require.NoError(t, err)

	store := fakeaccountstore.NewFakeAccountStore()
	manager, err := session.NewManager(store, codec, credentials.NewVerifier(credentials.WithCost(cfg.GetBcryptCost())))
	require.NoError(t, err)

	return &testFixture{
		store:   store,
		manager: manager,
		server:  server.New(cfg, manager, idp),
	}
}

// doJSON performs a request with a JSON body and decodes the envelope.
func (f *testFixture) doJSON(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, server.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)

	var resp server.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func registerBody(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

// tokenPairFromResult pulls the token pair out of an envelope result.
func tokenPairFromResult(t *testing.T, resp server.Response) (accessToken, refreshToken string) {
	t.Helper()
	require.Len(t, resp.Result, 1)
	entry, ok := resp.Result[0].(map[string]any)
	require.True(t, ok)
	accessToken, _ = entry["accessToken"].(string)
	refreshToken, _ = entry["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	return accessToken, refreshToken
}

func TestRegisterLoginRefreshLogoutScenario(t *testing.T) {
	f := setupTestFixture(t, nil)

	// Register
	w, resp := f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "00", resp.Status.Code)
	require.Equal(t, "Success", resp.Status.Description)
	require.Len(t, resp.Result, 1)

	// Login
	w, resp = f.doJSON(t, http.MethodPost, "/login", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "00", resp.Status.Code)
	accessToken, refreshToken := tokenPairFromResult(t, resp)

	// Refresh
	w, resp = f.doJSON(t, http.MethodPost, "/token", map[string]string{"refreshToken": refreshToken}, bearer(accessToken))
	require.Equal(t, http.StatusOK, w.Code)
	newAccess, _ := tokenPairFromResult(t, resp)
	require.NotEqual(t, accessToken, newAccess)

	// Logout with the refreshed access token
	w, resp = f.doJSON(t, http.MethodDelete, "/logout", nil, bearer(newAccess))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "00", resp.Status.Code)

	// The original refresh token is dead: superseded by the rotation
	// and the slot is cleared anyway.
	w, _ = f.doJSON(t, http.MethodPost, "/token", map[string]string{"refreshToken": refreshToken}, bearer(newAccess))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupTestFixture(t, nil)

	w, _ := f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "06", resp.Status.Code)
	require.Equal(t, "failed to create account", resp.Status.Description)
}

func TestRegisterMissingFields(t *testing.T) {
	f := setupTestFixture(t, nil)

	w, resp := f.doJSON(t, http.MethodPost, "/register", registerBody("", testPassword), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "06", resp.Status.Code)
}

func TestLoginFailureShapesAreIdentical(t *testing.T) {
	f := setupTestFixture(t, nil)

	w, _ := f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	wWrong, respWrong := f.doJSON(t, http.MethodPost, "/login", registerBody(testEmail, "nope"), nil)
	wUnknown, respUnknown := f.doJSON(t, http.MethodPost, "/login", registerBody("nobody@x.com", testPassword), nil)

	// Wrong password and unknown email are indistinguishable.
	require.Equal(t, http.StatusBadRequest, wWrong.Code)
	require.Equal(t, wWrong.Code, wUnknown.Code)
	require.Equal(t, respWrong, respUnknown)
}

func TestTokenEndpointAuthorization(t *testing.T) {
	f := setupTestFixture(t, nil)

	body := map[string]string{"refreshToken": "whatever"}

	// No Authorization header
	w, _ := f.doJSON(t, http.MethodPost, "/token", body, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Not a Bearer scheme
	w, _ = f.doJSON(t, http.MethodPost, "/token", body, map[string]string{"Authorization": "expired token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing refresh token
	w, _ = f.doJSON(t, http.MethodPost, "/token", map[string]string{}, bearer("some-token"))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Forged refresh token
	w, _ = f.doJSON(t, http.MethodPost, "/token", map[string]string{"refreshToken": "forged"}, bearer("some-token"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutWithoutBearer(t *testing.T) {
	f := setupTestFixture(t, nil)

	w, _ := f.doJSON(t, http.MethodDelete, "/logout", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = f.doJSON(t, http.MethodDelete, "/logout", nil, bearer("unknown-token"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalAccountLookup(t *testing.T) {
	f := setupTestFixture(t, nil)

	w, resp := f.doJSON(t, http.MethodPost, "/internal-account", map[string]string{"email": testEmail}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "account not found", resp.Status.Description)

	federated, err := accounts.NewFederatedAccount("google-1", "ext@x.com", "")
	require.NoError(t, err)
	_, err = f.store.Insert(federated)
	require.NoError(t, err)

	w, resp = f.doJSON(t, http.MethodPost, "/internal-account", map[string]string{"email": "ext@x.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "please login with your google account", resp.Status.Description)

	w, _ = f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = f.doJSON(t, http.MethodPost, "/internal-account", map[string]string{"email": testEmail}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Success", resp.Status.Description)
}

func TestAccessTokenCheck(t *testing.T) {
	f := setupTestFixture(t, nil)

	w, _ := f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w, resp := f.doJSON(t, http.MethodPost, "/login", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code)
	accessToken, _ := tokenPairFromResult(t, resp)

	w, resp = f.doJSON(t, http.MethodGet, "/user/access-token", nil, bearer(accessToken))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Access Token Valid", resp.Status.Description)

	w, resp = f.doJSON(t, http.MethodGet, "/user/access-token", nil, bearer("invalid token"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Access Token Expired", resp.Status.Description)

	w, _ = f.doJSON(t, http.MethodGet, "/user/access-token", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// fakeIdentityProvider stands in for the external provider in
// transport tests.
type fakeIdentityProvider struct {
	identity provider.Identity
}

func (p *fakeIdentityProvider) Name() string { return "fake" }

func (p *fakeIdentityProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/auth?state=" + state
}

func (p *fakeIdentityProvider) Exchange(_ context.Context, code string) (*provider.Identity, error) {
	if code != "good-code" {
		return nil, fmt.Errorf("bad code")
	}
	identity := p.identity
	return &identity, nil
}

func TestProviderLoginFlow(t *testing.T) {
	idp := &fakeIdentityProvider{identity: provider.Identity{
		ExternalID:  "ext-1",
		Email:       "ext@x.com",
		DisplayName: "Jane Doe",
	}}
	f := setupTestFixture(t, idp)

	// The login redirect sets the state cookie.
	w, _ := f.doJSON(t, http.MethodGet, "/auth/google", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	state := cookies[0].Value
	require.Contains(t, w.Header().Get("Location"), state)

	// The callback with matching state and a good code issues tokens.
	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state="+state+"&code=good-code", nil)
	r.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	tokenPairFromResult(t, resp)

	// State mismatch is rejected.
	r = httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=other&code=good-code", nil)
	r.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, r)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProviderLoginLocalAccountConflict(t *testing.T) {
	idp := &fakeIdentityProvider{identity: provider.Identity{
		ExternalID: "ext-1",
		Email:      testEmail,
	}}
	f := setupTestFixture(t, idp)

	w, _ := f.doJSON(t, http.MethodPost, "/register", registerBody(testEmail, testPassword), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = f.doJSON(t, http.MethodGet, "/auth/google", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	cookie := w.Result().Cookies()[0]

	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state="+cookie.Value+"&code=good-code", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, r)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp server.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "06", resp.Status.Code)
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t, nil)

	r := httptest.NewRequest(http.MethodOptions, "/login", nil)
	r.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}
