package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/aussiebroadwan/aegis/pkg/slogx"

	_ "github.com/aussiebroadwan/aegis/api/ledger" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// adminPrincipal is the principal recorded for requests carrying the admin token.
const adminPrincipal = "admin"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	adminToken   string
	startTime    time.Time
	logger       *slog.Logger

	store      store.Store
	keyManager *signx.KeyManager
	feed       http.Handler

	AuditService       *service.AuditService
	TOTPService        *service.TOTPService
	KeyRotationService *service.KeyRotationService
	AlertService       *service.AlertService
}

// NewRouter builds a router. An empty adminToken leaves the admin endpoints
// open, which is only meant for local development.
func NewRouter(
	buildVersion, adminToken string,
	st store.Store,
	km *signx.KeyManager,
	feed http.Handler,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		adminToken:   adminToken,
		startTime:    time.Now(),
		store:        st,
		keyManager:   km,
		feed:         feed,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogs()
	r.registerVerify()
	r.registerExport()
	r.registerTOTP()
	r.registerKeyRotation()
	r.registerAlerts()
	r.registerFeed()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Aegis Audit Ledger API
//	@version		0.1.0
//	@description	Append-only audit ledger. Every block is SHA-256 hash chained to its predecessor and signed
//	@description	under TOTP authorisation. Signatures can be checked offline against the JWKS endpoint.
//	@description
//	@description				Hashes are hex encoded; payloads and signatures are standard base64.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/aegis
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// admin wraps h with the admin token check and a per-caller rate limit.
func (r *Router) admin(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.RequireBearerToken(r.adminToken, adminPrincipal),
		httpx.RateLimitByPrincipal(limit),
	)
}

func (r *Router) registerLogs() {
	h := &LogsHandler{Audit: r.AuditService}

	// POST /v1/logs - moderate rate limit (every call signs and writes a block)
	r.Mux.Handle("POST /v1/logs",
		httpx.Chain(http.HandlerFunc(h.HandleSubmit),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/blocks",
		httpx.Chain(http.HandlerFunc(h.HandleRange),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /v1/blocks/head - dashboards poll this, public limit
	r.Mux.Handle("GET /v1/blocks/head",
		httpx.Chain(http.HandlerFunc(h.HandleHead),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /v1/blocks/search",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/trail",
		httpx.Chain(http.HandlerFunc(h.HandleTrail),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerVerify() {
	h := &VerifyHandler{Audit: r.AuditService}

	// POST /v1/verify - moderate rate limit (walks the whole chain)
	r.Mux.Handle("POST /v1/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/verify/data",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyData),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/verify/chain",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyChain),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/verify/stats",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerExport() {
	h := &ExportHandler{Audit: r.AuditService}

	r.Mux.Handle("GET /v1/export",
		httpx.Chain(http.HandlerFunc(h.HandleExport),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTOTP() {
	h := &TOTPHandler{TOTPService: r.TOTPService}

	// Both endpoints expose or replace signing authority - strict limits
	r.Mux.Handle("GET /v1/totp/current", r.admin(http.HandlerFunc(h.HandleCurrent), httpx.StrictLimit))
	r.Mux.Handle("POST /v1/totp/regenerate", r.admin(http.HandlerFunc(h.HandleRegenerate), httpx.StrictLimit))
}

func (r *Router) registerKeyRotation() {
	h := &KeyRotationHandler{KeyRotationService: r.KeyRotationService}

	r.Mux.Handle("POST /v1/keys/rotate", r.admin(http.HandlerFunc(h.HandleRotate), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/keys/{kid}/retire", r.admin(http.HandlerFunc(h.HandleRetireKey), httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/keys",
		httpx.Chain(http.HandlerFunc(h.HandleListKeys),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Public key material is meant for offline verifiers - public limit
	r.Mux.Handle("GET /v1/keys/public",
		httpx.Chain(http.HandlerFunc(h.HandlePublicKey),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.KeyRotationService),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerAlerts() {
	h := &AlertHandler{Alerts: r.AlertService}

	r.Mux.Handle("GET /v1/alerts", r.admin(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/alerts", r.admin(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/alerts/stats", r.admin(http.HandlerFunc(h.HandleStats), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/alerts/{id}/acknowledge", r.admin(http.HandlerFunc(h.HandleAcknowledge), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/alerts/{id}/resolve", r.admin(http.HandlerFunc(h.HandleResolve), httpx.ModerateLimit))
}

func (r *Router) registerFeed() {
	// The limit applies to connection attempts, not to messages.
	r.Mux.Handle("GET /v1/feed",
		httpx.Chain(FeedHandler(r.feed),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	h := &HealthHandler{
		Started: r.startTime,
		Version: r.buildVersion,
		Store:   r.store,
		Keys:    r.keyManager,
		TOTP:    r.TOTPService,
		Alerts:  r.AlertService,
	}

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(http.HandlerFunc(h.HandleLive),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(http.HandlerFunc(h.HandleReady),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
