package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/aegis/internal/ledger/export"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
)

// VerifyHandler serves integrity checks and the verification history.
type VerifyHandler struct {
	Audit *service.AuditService
}

// HandleVerify handles POST /v1/verify
//
//	@Summary		Verify chain integrity
//	@Description	Recomputes every block hash, checks every link and signature, and reports the first broken index.
//	@Description	A broken chain is still a 200 reply with ok=false; the run is recorded in the verification history.
//	@Tags			Verify
//	@Produce		json
//	@Success		200	{object}	ledgersdk.VerifyResponse
//	@Failure		500	{object}	ledgersdk.ErrorResponse	"Storage failure"
//	@Router			/v1/verify [post]
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	res, err := h.Audit.Verify(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, verificationToSDK(res))
}

// HandleVerifyData handles POST /v1/verify/data
//
//	@Summary		Verify a data hash
//	@Description	Compares SHA-256(data) with expected_hash.
//	@Tags			Verify
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ledgersdk.VerifyDataRequest	true	"Data and expected digest"
//	@Success		200		{object}	ledgersdk.VerifyDataResponse
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Router			/v1/verify/data [post]
func (h *VerifyHandler) HandleVerifyData(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.VerifyDataRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	data, err := decodePayload(req.Data, req.Encoding)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.Audit.VerifyData(r.Context(), data, req.ExpectedHash)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.VerifyDataResponse{OK: res.OK, ComputedHash: res.ComputedHash})
}

// maxExportBodyBytes caps uploaded exports for POST /v1/verify/chain.
const maxExportBodyBytes = 64 << 20

// HandleVerifyChain handles POST /v1/verify/chain
//
//	@Summary		Verify an export file
//	@Description	Decodes an export produced by GET /v1/export and checks hashes, links and signatures against every key the server knows, retired ones included.
//	@Description	An export that starts above index 0 trusts its first previous_hash.
//	@Tags			Verify
//	@Accept			json
//	@Accept			application/x-ndjson
//	@Accept			text/csv
//	@Produce		json
//	@Param			format	query		string	false	"Export format"	Enums(json, jsonl, csv)	default(jsonl)
//	@Success		200		{object}	ledgersdk.VerifyResponse
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Router			/v1/verify/chain [post]
func (h *VerifyHandler) HandleVerifyChain(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.Audit.VerifyExportFile(r.Context(), format, http.MaxBytesReader(w, r.Body, maxExportBodyBytes))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, verificationToSDK(res))
}

// HandleStats handles GET /v1/verify/stats
//
//	@Summary		Verification statistics
//	@Description	Totals of recorded verification runs with the most recent ones, newest first.
//	@Tags			Verify
//	@Produce		json
//	@Param			limit	query		int	false	"Number of recent runs"	default(10)
//	@Success		200		{object}	ledgersdk.StatsResponse
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Router			/v1/verify/stats [get]
func (h *VerifyHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	stats, err := h.Audit.Stats(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statsToSDK(stats))
}
