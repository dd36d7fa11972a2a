package server

import "net/http"

const (
	RouteRegister        = "/register"
	RouteLogin           = "/login"
	RouteToken           = "/token"
	RouteLogout          = "/logout"
	RouteInternalAccount = "/internal-account"
	RouteAccessToken     = "/user/access-token"
	RouteGoogleLogin     = "/auth/google"
	RouteGoogleCallback  = "/auth/google/callback"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteToken, ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteInternalAccount, ChainMiddleware(s.InternalAccountHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAccessToken, ChainMiddleware(s.AccessTokenCheckHandler(), s.APIMiddleware()...))

	// External provider routes are only wired when a provider is
	// configured.
	if s.idp != nil {
		s.RegisterRouteHandler("GET "+RouteGoogleLogin, ChainMiddleware(s.ProviderLoginHandler(), s.APIMiddleware()...))
		s.RegisterRouteHandler("GET "+RouteGoogleCallback, ChainMiddleware(s.ProviderCallbackHandler(), s.APIMiddleware()...))
	}

	// Method-qualified patterns never match OPTIONS, so preflight
	// requests need their own routes through the CORS middleware.
	preflight := ChainMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware)
	for _, path := range []string{RouteRegister, RouteLogin, RouteToken, RouteLogout, RouteInternalAccount, RouteAccessToken} {
		s.RegisterRouteHandler("OPTIONS "+path, preflight)
	}
}
