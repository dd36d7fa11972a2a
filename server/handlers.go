package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/altura-labs/go-token-auth/internal/errors"
	"github.com/altura-labs/go-token-auth/session"
)

const (
	descSuccess            = "Success"
	descRegisterFailed     = "failed to create account"
	descLoginFailed        = "failed to login"
	descUnauthorized       = "unauthorized"
	descTokenRefreshFailed = "failed to refresh token"
	descLogoutFailed       = "failed to logout"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// RegisterHandler creates a local account from an email and password.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, failureResponse(descRegisterFailed))
			return
		}

		account, err := s.sessions.Register(req.Email, req.Password)
		if err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrValidation), apperrors.Is(err, apperrors.ErrConflict):
				writeJSON(w, http.StatusBadRequest, failureResponse(descRegisterFailed))
			default:
				log.Error().Err(err).Msg("register failed")
				writeJSON(w, http.StatusInternalServerError, failureResponse(descRegisterFailed))
			}
			return
		}

		writeJSON(w, http.StatusCreated, successResponse(descSuccess, account))
	}
}

// LoginHandler verifies a credential and returns a token pair. An
// unknown email and a wrong password produce identical responses.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, failureResponse(descLoginFailed))
			return
		}

		pair, err := s.sessions.Login(req.Email, req.Password)
		if err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrBadCredentials):
				writeJSON(w, http.StatusBadRequest, failureResponse(descLoginFailed))
			default:
				log.Error().Err(err).Msg("login failed")
				writeJSON(w, http.StatusInternalServerError, failureResponse(descLoginFailed))
			}
			return
		}

		writeJSON(w, http.StatusOK, successResponse(descSuccess, pair))
	}
}

// TokenHandler exchanges a refresh token for a fresh pair. The caller
// presents its (possibly expired) access token as a Bearer header and
// the refresh token in the body.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r); !ok {
			writeJSON(w, http.StatusUnauthorized, failureResponse(descUnauthorized))
			return
		}

		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeJSON(w, http.StatusUnauthorized, failureResponse(descUnauthorized))
			return
		}

		pair, err := s.sessions.Refresh(req.RefreshToken)
		if err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrUnauthenticated):
				writeJSON(w, http.StatusUnauthorized, failureResponse(descUnauthorized))
			default:
				log.Error().Err(err).Msg("token refresh failed")
				writeJSON(w, http.StatusInternalServerError, failureResponse(descTokenRefreshFailed))
			}
			return
		}

		writeJSON(w, http.StatusOK, successResponse(descSuccess, pair))
	}
}

// LogoutHandler clears the caller's session slot. The token may be
// either the access or the refresh token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, failureResponse(descUnauthorized))
			return
		}

		if err := s.sessions.Logout(rawToken); err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrUnauthenticated):
				writeJSON(w, http.StatusUnauthorized, failureResponse(descUnauthorized))
			default:
				log.Error().Err(err).Msg("logout failed")
				writeJSON(w, http.StatusInternalServerError, failureResponse(descLogoutFailed))
			}
			return
		}

		writeJSON(w, http.StatusOK, successResponse(descSuccess))
	}
}

// InternalAccountHandler reports whether an email can log in locally,
// only through an external provider, or is not registered. Clients
// use it before showing the password prompt.
func (s *Server) InternalAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			writeJSON(w, http.StatusBadRequest, failureResponse("email is required"))
			return
		}

		kind, err := s.sessions.LookupAccountKind(req.Email)
		if err != nil {
			log.Error().Err(err).Msg("account lookup failed")
			writeJSON(w, http.StatusInternalServerError, failureResponse("account lookup failed"))
			return
		}

		switch kind {
		case session.AccountNotFound:
			writeJSON(w, http.StatusOK, successResponse("account not found"))
		case session.AccountExternal:
			writeJSON(w, http.StatusOK, successResponse("please login with your google account"))
		default:
			writeJSON(w, http.StatusOK, successResponse(descSuccess))
		}
	}
}

// AccessTokenCheckHandler validates the presented access token.
func (s *Server) AccessTokenCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, failureResponse("Access Token Expired"))
			return
		}

		if result := s.sessions.CheckAccessToken(rawToken); !result.Valid() {
			writeJSON(w, http.StatusUnauthorized, failureResponse("Access Token Expired"))
			return
		}

		writeJSON(w, http.StatusOK, successResponse("Access Token Valid"))
	}
}
