package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/altura-labs/go-token-auth/internal/errors"
)

// stateCookieName tracks the OAuth state parameter between the
// redirect and the callback.
const stateCookieName = "auth_state"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// ProviderLoginHandler redirects the user-agent to the external
// provider's consent page.
func (s *Server) ProviderLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)

		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   300, // long enough for the consent round trip
		})

		http.Redirect(w, r, s.idp.AuthCodeURL(state), http.StatusFound)
	}
}

// ProviderCallbackHandler completes the external login: it checks the
// state parameter, exchanges the code for a verified identity, and
// hands the identity to the session manager for issuance.
func (s *Server) ProviderCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			writeJSON(w, http.StatusUnauthorized, failureResponse("state mismatch"))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			writeJSON(w, http.StatusUnauthorized, failureResponse("missing authorization code"))
			return
		}

		identity, err := s.idp.Exchange(r.Context(), code)
		if err != nil {
			log.Error().Err(err).Str("provider", s.idp.Name()).Msg("code exchange failed")
			writeJSON(w, http.StatusUnauthorized, failureResponse(descLoginFailed))
			return
		}

		pair, err := s.sessions.ProviderLogin(*identity)
		if err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrAccountExistsLocally):
				writeJSON(w, http.StatusBadRequest, failureResponse("account exists, login with email and password"))
			case apperrors.Is(err, apperrors.ErrConflict), apperrors.Is(err, apperrors.ErrValidation):
				writeJSON(w, http.StatusBadRequest, failureResponse(descLoginFailed))
			default:
				log.Error().Err(err).Msg("provider login failed")
				writeJSON(w, http.StatusInternalServerError, failureResponse(descLoginFailed))
			}
			return
		}

		writeJSON(w, http.StatusOK, successResponse(descSuccess, pair))
	}
}
