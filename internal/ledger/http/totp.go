package http

import (
	"net/http"

	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
)

// TOTPHandler exposes the signing authorisation code to operators.
type TOTPHandler struct {
	TOTPService *service.TOTPService
}

// HandleCurrent handles GET /v1/totp/current
//
//	@Summary		Current TOTP code
//	@Description	Returns the code for the current time step and how long it stays current.
//	@Tags			TOTP
//	@Produce		json
//	@Success		200	{object}	ledgersdk.TOTPCodeResponse
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Failure		503	{object}	ledgersdk.ErrorResponse	"TOTP secret not loaded"
//	@Security		BearerAuth
//	@Router			/v1/totp/current [get]
func (h *TOTPHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	code, err := h.TOTPService.CurrentCode()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.TOTPCodeResponse{
		Code:             code.Code,
		SecondsRemaining: code.SecondsRemaining,
		Period:           code.Period,
		Digits:           code.Digits,
	})
}

// HandleRegenerate handles POST /v1/totp/regenerate
//
//	@Summary		Regenerate the TOTP secret
//	@Description	Replaces the secret. Codes derived from the old secret are rejected from now on.
//	@Tags			TOTP
//	@Produce		json
//	@Success		200	{object}	ledgersdk.TOTPEnrollResponse
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Failure		500	{object}	ledgersdk.ErrorResponse	"Internal Server Error"
//	@Security		BearerAuth
//	@Router			/v1/totp/regenerate [post]
func (h *TOTPHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	enroll, err := h.TOTPService.RegenerateSecret(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.TOTPEnrollResponse{
		Secret:          enroll.Secret,
		ProvisioningURL: enroll.ProvisioningURL,
		Period:          enroll.Period,
		Digits:          enroll.Digits,
	})
}
