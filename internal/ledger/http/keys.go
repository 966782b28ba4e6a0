package http

import (
	"net/http"

	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
)

// KeyRotationHandler serves the signing key lifecycle. Mutations require the
// admin token.
type KeyRotationHandler struct {
	KeyRotationService *service.KeyRotationService
}

// HandleRotate handles POST /v1/keys/rotate
//
//	@Summary		Rotate signing keys
//	@Description	Generates a new signing key, retires the active one and switches appends to the new key.
//	@Description	Retired keys stay published so earlier blocks remain verifiable.
//	@Tags			Keys
//	@Produce		json
//	@Success		200	{object}	ledgersdk.RotateKeyResponse
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Failure		500	{object}	ledgersdk.ErrorResponse	"Internal Server Error"
//	@Security		BearerAuth
//	@Router			/v1/keys/rotate [post]
func (h *KeyRotationHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.KeyRotationService.RotateKeys(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ledgersdk.RotateKeyResponse{
		NewKeyID:     resp.NewKeyID,
		RetiredKeyID: resp.RetiredKeyID,
	})
}

// HandleListKeys handles GET /v1/keys
//
//	@Summary		List signing keys
//	@Description	Lists every signing key, oldest first, with its fingerprint and status.
//	@Tags			Keys
//	@Produce		json
//	@Success		200	{array}		ledgersdk.SigningKeyInfo
//	@Failure		500	{object}	ledgersdk.ErrorResponse	"Internal Server Error"
//	@Router			/v1/keys [get]
func (h *KeyRotationHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.KeyRotationService.ListSigningKeys(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ledgersdk.SigningKeyInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, ledgersdk.SigningKeyInfo{
			KeyID:       k.Kid,
			Algorithm:   k.Algorithm,
			Fingerprint: k.Fingerprint,
			Active:      k.Active,
			CreatedAt:   k.CreatedAt,
			RetiredAt:   k.RetiredAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRetireKey handles POST /v1/keys/{kid}/retire
//
//	@Summary		Retire a signing key
//	@Description	Retires a key. Retiring the active key stops appends until the next rotation.
//	@Tags			Keys
//	@Param			kid	path	string	true	"Key ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	ledgersdk.ErrorResponse	"Unauthorized"
//	@Failure		404	{object}	ledgersdk.ErrorResponse	"Key not found"
//	@Failure		409	{object}	ledgersdk.ErrorResponse	"Key already retired"
//	@Security		BearerAuth
//	@Router			/v1/keys/{kid}/retire [post]
func (h *KeyRotationHandler) HandleRetireKey(w http.ResponseWriter, r *http.Request) {
	kid := r.PathValue("kid")
	if kid == "" {
		badRequest(w, "kid is required")
		return
	}

	if err := h.KeyRotationService.RetireKey(r.Context(), kid); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePublicKey handles GET /v1/keys/public
//
//	@Summary		Export a public key
//	@Description	Returns a public key as PKIX PEM and JWK. Without key_id the active key is returned.
//	@Tags			Keys
//	@Produce		json
//	@Param			key_id	query		string	false	"Key ID"
//	@Success		200		{object}	ledgersdk.PublicKeyResponse
//	@Failure		404		{object}	ledgersdk.ErrorResponse	"Key not found"
//	@Failure		503		{object}	ledgersdk.ErrorResponse	"No active signing key"
//	@Router			/v1/keys/public [get]
func (h *KeyRotationHandler) HandlePublicKey(w http.ResponseWriter, r *http.Request) {
	pk, err := h.KeyRotationService.ExportPublicKey(r.URL.Query().Get("key_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.PublicKeyResponse{
		KeyID:       pk.KeyID,
		Algorithm:   pk.Algorithm,
		PublicKey:   pk.PublicKey,
		Fingerprint: pk.Fingerprint,
		JWK:         pk.JWK,
	})
}

// JWKSHandler exposes every signing key, retired ones included, for
// offline verification.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify block signatures.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	ledgersdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *service.KeyRotationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, ledgersdk.JWKSResponse(keys.JWKS()))
	}
}
