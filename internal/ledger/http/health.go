package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/aussiebroadwan/aegis/pkg/signx"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	Started time.Time
	Version string

	Store  store.Store
	Keys   *signx.KeyManager
	TOTP   *service.TOTPService
	Alerts *service.AlertService // optional, informational only
}

// HandleLive handles GET /livez
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness check. Answers 200 while the process is serving, with uptime and version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	ledgersdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func (h *HealthHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.response(healthOK, nil))
}

// HandleReady handles GET /readyz
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness check. Appends need the store, an active signing key and a loaded TOTP secret;
//	@Description	any of them missing answers 503. Open alerts are listed but never fail the check.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	ledgersdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	ledgersdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get]
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := &ledgersdk.HealthChecks{Store: healthOK, Signer: healthOK, TOTP: healthOK}
	ready := true
	fail := func(field *string, reason string) {
		*field = "error: " + reason
		ready = false
	}

	if err := h.Store.Ping(r.Context()); err != nil {
		fail(&checks.Store, err.Error())
	}
	if !h.Keys.IsReady() {
		fail(&checks.Signer, "no active signing key")
	}
	if !h.TOTP.Ready() {
		fail(&checks.TOTP, "secret not loaded")
	}
	if h.Alerts != nil {
		checks.Alerts = h.alertSummary(r)
	}

	status, code := healthOK, http.StatusOK
	if !ready {
		status, code = healthDegraded, http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, code, h.response(status, checks))
}

func (h *HealthHandler) alertSummary(r *http.Request) string {
	stats, err := h.Alerts.Stats(r.Context())
	switch {
	case err != nil:
		return "unknown"
	case stats.Active == 0:
		return healthOK
	default:
		return fmt.Sprintf("%d active, %d critical overall", stats.Active, stats.BySeverity[domain.SeverityCritical])
	}
}

func (h *HealthHandler) response(status string, checks *ledgersdk.HealthChecks) ledgersdk.HealthResponse {
	return ledgersdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.Started).Round(time.Second).String(),
		Version: h.Version,
		Checks:  checks,
	}
}
