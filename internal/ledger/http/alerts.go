package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
)

// AlertHandler serves the operator alert queue. Every endpoint requires the
// admin token.
type AlertHandler struct {
	Alerts *service.AlertService
}

// HandleList handles GET /v1/alerts
//
//	@Summary		List alerts
//	@Description	Lists alerts newest first.
//	@Tags			Alerts
//	@Produce		json
//	@Param			active_only	query		bool	false	"Skip resolved alerts"
//	@Param			limit		query		int		false	"Maximum alerts (default 50, max 500)"
//	@Success		200			{array}		ledgersdk.Alert
//	@Failure		400			{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Failure		401			{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Security		BearerAuth
//	@Router			/v1/alerts [get]
func (h *AlertHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var activeOnly bool
	if s := q.Get("active_only"); s != "" {
		if activeOnly, err = strconv.ParseBool(s); err != nil {
			badRequest(w, "active_only must be true or false")
			return
		}
	}

	alerts, err := h.Alerts.List(r.Context(), activeOnly, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]ledgersdk.Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertToSDK(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /v1/alerts
//
//	@Summary		Raise a manual alert
//	@Tags			Alerts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ledgersdk.CreateAlertRequest	true	"Alert"
//	@Success		201		{object}	ledgersdk.Alert
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Failure		401		{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Security		BearerAuth
//	@Router			/v1/alerts [post]
func (h *AlertHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.CreateAlertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	a, err := h.Alerts.Create(r.Context(), service.CreateAlertRequest{
		Title:       req.Title,
		Description: req.Description,
		Severity:    domain.AlertSeverity(req.Severity),
		Source:      req.Source,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, alertToSDK(a))
}

// HandleAcknowledge handles POST /v1/alerts/{id}/acknowledge
//
//	@Summary		Acknowledge an alert
//	@Description	Marks an open alert as seen. It stays active until resolved.
//	@Tags			Alerts
//	@Produce		json
//	@Param			id	path		string	true	"Alert ID"
//	@Success		200	{object}	ledgersdk.Alert
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Failure		404	{object}	ledgersdk.ErrorResponse	"Alert not found"
//	@Failure		409	{object}	ledgersdk.ErrorResponse	"Already acknowledged or resolved"
//	@Security		BearerAuth
//	@Router			/v1/alerts/{id}/acknowledge [post]
func (h *AlertHandler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	a, err := h.Alerts.Acknowledge(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, alertToSDK(a))
}

// HandleResolve handles POST /v1/alerts/{id}/resolve
//
//	@Summary		Resolve an alert
//	@Description	Closes an alert. Resolving reports nothing back to the chain; the next failure raises a new alert.
//	@Tags			Alerts
//	@Produce		json
//	@Param			id	path		string	true	"Alert ID"
//	@Success		200	{object}	ledgersdk.Alert
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Failure		404	{object}	ledgersdk.ErrorResponse	"Alert not found"
//	@Failure		409	{object}	ledgersdk.ErrorResponse	"Already resolved"
//	@Security		BearerAuth
//	@Router			/v1/alerts/{id}/resolve [post]
func (h *AlertHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	a, err := h.Alerts.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, alertToSDK(a))
}

// HandleStats handles GET /v1/alerts/stats
//
//	@Summary		Alert statistics
//	@Tags			Alerts
//	@Produce		json
//	@Success		200	{object}	ledgersdk.AlertStatsResponse
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Security		BearerAuth
//	@Router			/v1/alerts/stats [get]
func (h *AlertHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Alerts.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	bySeverity := make(map[string]int, len(stats.BySeverity))
	for sev, n := range stats.BySeverity {
		bySeverity[string(sev)] = n
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.AlertStatsResponse{
		Total:        stats.Total,
		Active:       stats.Active,
		Acknowledged: stats.Acknowledged,
		BySeverity:   bySeverity,
	})
}
