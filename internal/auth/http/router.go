package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"

	_ "github.com/aussiebroadwan/gatekeeper/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookies      Cookies

	store            store.Store
	SessionService   *service.SessionService
	LoginService     *service.LoginService
	AccountService   *service.AccountService
	TwoFactorService *service.TwoFactorService
	AdminService     *service.AdminService
	OAuthService     *service.OAuthService
	BootstrapService *service.BootstrapService

	// CounterPing is reported by /readyz when the attempt counter lives
	// outside the database. Nil when it does not.
	CounterPing Pinger
}

func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	cookies Cookies,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cookies:      cookies,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerAccount()
	r.registerOAuth()
	r.registerSecurity()
	r.registerAdmin()
	r.registerSystem()
	r.registerBootstrap()

	// API docs - public limit, the UI pulls several assets per page load
	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(), httpx.RateLimitByIP(httpx.PublicLimit)))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatekeeper Authentication Service API
//	@version		0.1.0
//	@description	Account, login and session lifecycle service. Logins end in an opaque session token,
//	@description	returned in the body and as the gk_session cookie. Accounts with a second factor get
//	@description	a short-lived signed ticket first.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gatekeeper
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque session token. Format: "Bearer {token}". The gk_session cookie works too.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated is the chain every signed-in route shares: a live session,
// then a per-user budget.
func (r *Router) authenticated(h http.Handler, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{
		httpx.AuthnMiddleware(SessionCookieName, SessionAuthenticator(r.SessionService)),
	}, extra...)
	mws = append(mws, httpx.RateLimitByUser(httpx.ModerateLimit))
	return httpx.Chain(h, mws...)
}

func (r *Router) loginHandler() *LoginHandler {
	return &LoginHandler{
		Login:    r.LoginService,
		Sessions: r.SessionService,
		Cookies:  r.cookies,
	}
}

func (r *Router) registerLogin() {
	h := r.loginHandler()

	// POST /auth/login - strict, keyed by IP and email so one address cannot
	// be hammered from a botnet without tripping its own budget
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// Second factor - strict by IP on top of the per-ticket attempt counter
	twoFactor := httpx.Chain(http.HandlerFunc(h.HandleTwoFactor),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.Mux.Handle("POST /auth/login/2fa", twoFactor)
	r.Mux.Handle("POST /auth/2fa/verify", twoFactor)

	r.Mux.Handle("POST /auth/logout", r.authenticated(http.HandlerFunc(h.HandleLogout)))

	// Anonymous callers are an answer here, not an error
	r.Mux.Handle("GET /auth/session",
		httpx.Chain(http.HandlerFunc(h.HandleSession),
			httpx.RateLimitByIP(httpx.LenientLimit),
			httpx.OptionalAuthn(SessionCookieName, SessionAuthenticator(r.SessionService)),
		),
	)
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{Accounts: r.AccountService}

	strict := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.StrictLimit))
	}

	r.Mux.Handle("POST /auth/register", strict(h.HandleRegister))
	r.Mux.Handle("POST /auth/activate/resend", strict(h.HandleResendActivation))
	r.Mux.Handle("POST /auth/forgot-password", strict(h.HandleForgotPassword))
	r.Mux.Handle("POST /auth/password/reset/validate", strict(h.HandleValidateReset))
	r.Mux.Handle("POST /auth/reset-password", strict(h.HandleResetPassword))

	r.Mux.Handle("GET /auth/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /auth/password/change",
		r.authenticated(http.HandlerFunc(h.HandleChangePassword)))
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{
		OAuth:   r.OAuthService,
		Results: r.loginHandler(),
		Cookies: r.cookies,
	}

	r.Mux.Handle("GET /auth/oauth/{provider}/start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /auth/oauth/{provider}/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/oauth/complete",
		httpx.Chain(http.HandlerFunc(h.HandleComplete),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSecurity() {
	h := &SecurityHandler{
		Store:     r.store,
		Sessions:  r.SessionService,
		TwoFactor: r.TwoFactorService,
		Cookies:   r.cookies,
	}

	r.Mux.Handle("GET /user/security/sessions", r.authenticated(http.HandlerFunc(h.HandleListSessions)))
	r.Mux.Handle("POST /user/security/sessions/{id}/revoke", r.authenticated(http.HandlerFunc(h.HandleRevokeSession)))
	r.Mux.Handle("POST /user/security/sessions/revoke-others", r.authenticated(http.HandlerFunc(h.HandleRevokeOthers)))

	r.Mux.Handle("GET /user/security/2fa", r.authenticated(http.HandlerFunc(h.HandleTwoFactorStatus)))
	r.Mux.Handle("POST /user/security/2fa/setup", r.authenticated(http.HandlerFunc(h.HandleSetup)))
	r.Mux.Handle("POST /user/security/2fa/disable", r.authenticated(http.HandlerFunc(h.HandleDisable)))

	// Code-checking endpoints - strict by user (prevent brute force of TOTP codes)
	r.Mux.Handle("POST /user/security/2fa/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.AuthnMiddleware(SessionCookieName, SessionAuthenticator(r.SessionService)),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /user/security/2fa/recovery-codes",
		httpx.Chain(http.HandlerFunc(h.HandleRegenerate),
			httpx.AuthnMiddleware(SessionCookieName, SessionAuthenticator(r.SessionService)),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Admin: r.AdminService}

	// The service checks the exact permission per operation; this only keeps
	// accounts without console access off the admin surface entirely
	admin := func(fn http.HandlerFunc) http.Handler {
		return r.authenticated(fn, httpx.RequireAnyPermission(domain.PermAdminAccess))
	}

	r.Mux.Handle("GET /admin/users/{id}/sessions", admin(h.HandleListSessions))
	r.Mux.Handle("POST /admin/users/{id}/sessions/{sid}/revoke", admin(h.HandleRevokeSession))
	r.Mux.Handle("POST /admin/users/{id}/sessions/revoke-all", admin(h.HandleRevokeAll))
	r.Mux.Handle("PUT /admin/users/{id}/status", admin(h.HandleSetStatus))
	r.Mux.Handle("PUT /admin/users/{id}/role", admin(h.HandleSetRole))
	r.Mux.Handle("PUT /admin/users/{id}/permissions", admin(h.HandleSetPermissions))
	r.Mux.Handle("PATCH /admin/users/{id}/flags/{flag}", admin(h.HandleSetFlag))
	r.Mux.Handle("DELETE /admin/users/{id}", admin(h.HandleDeleteUser))
}

func (r *Router) registerBootstrap() {
	// POST /auth/bootstrap - very strict rate limit by IP (one-time setup endpoint)
	r.Mux.Handle("POST /auth/bootstrap",
		httpx.Chain(&BootstrapHandler{BootstrapService: r.BootstrapService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.CounterPing),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
