package http

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
)

const (
	// maxBodyBytes caps JSON request bodies, payload included.
	maxBodyBytes = 1 << 20

	// maxRangeBlocks caps a single GET /v1/blocks page. Larger reads go
	// through the export endpoint.
	maxRangeBlocks = 1000
)

// LogsHandler serves log submission and chain reads.
type LogsHandler struct {
	Audit *service.AuditService
}

// HandleSubmit handles POST /v1/logs
//
//	@Summary		Submit a log record
//	@Description	Appends a record to the chain. The block is hashed, signed under TOTP authorisation and persisted before the reply.
//	@Description	Resubmitting the same request_id returns the original block with 200 instead of appending again.
//	@Tags			Logs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ledgersdk.SubmitLogRequest	true	"Record to append"
//	@Success		201		{object}	ledgersdk.Block				"Appended"
//	@Success		200		{object}	ledgersdk.Block				"Already appended under this request_id"
//	@Failure		400		{object}	ledgersdk.ErrorResponse		"Bad Request"
//	@Failure		401		{object}	ledgersdk.ErrorResponse		"TOTP authentication failed"
//	@Failure		500		{object}	ledgersdk.ErrorResponse		"Storage failure"
//	@Failure		503		{object}	ledgersdk.ErrorResponse		"No active signing key"
//	@Router			/v1/logs [post]
func (h *LogsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req ledgersdk.SubmitLogRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	payload, err := decodePayload(req.Payload, req.Encoding)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	b, replayed, err := h.Audit.SubmitLog(r.Context(), service.SubmitRequest{
		Payload:   payload,
		Code:      req.TOTPCode,
		RequestID: req.RequestID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	httpx.WriteJSON(w, status, blockToSDK(b))
}

// HandleHead handles GET /v1/blocks/head
//
//	@Summary		Get the chain head
//	@Description	Returns the index and hash of the newest block. An empty chain reports index -1 and the all-zero genesis hash.
//	@Tags			Blocks
//	@Produce		json
//	@Success		200	{object}	ledgersdk.HeadResponse
//	@Router			/v1/blocks/head [get]
func (h *LogsHandler) HandleHead(w http.ResponseWriter, r *http.Request) {
	head := h.Audit.Head()
	resp := ledgersdk.HeadResponse{
		Index:     head.Index,
		BlockHash: hex.EncodeToString(head.BlockHash),
	}
	if !head.Empty() {
		ts := head.Timestamp.UTC()
		resp.Timestamp = &ts
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRange handles GET /v1/blocks
//
//	@Summary		Get a range of blocks
//	@Description	Returns blocks with start <= index < end in index order. end defaults to the chain length.
//	@Tags			Blocks
//	@Produce		json
//	@Param			start	query		int	false	"First index (inclusive)"	default(0)
//	@Param			end		query		int	false	"Last index (exclusive)"
//	@Success		200		{array}		ledgersdk.Block
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Failure		416		{object}	ledgersdk.ErrorResponse	"Range outside the chain"
//	@Router			/v1/blocks [get]
func (h *LogsHandler) HandleRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := queryUint(q, "start", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	end, err := queryUint(q, "end", h.Audit.Head().Length())
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if end > start && end-start > maxRangeBlocks {
		badRequest(w, fmt.Sprintf("range of %d blocks exceeds the limit of %d; use /v1/export", end-start, maxRangeBlocks))
		return
	}

	blocks, err := h.Audit.GetRange(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blocksToSDK(blocks))
}

// HandleSearch handles GET /v1/blocks/search
//
//	@Summary		Search payloads
//	@Description	Returns blocks whose payload matches a glob pattern (e.g. "*user=alice*"), oldest first.
//	@Tags			Blocks
//	@Produce		json
//	@Param			q		query		string	true	"Glob pattern"
//	@Param			limit	query		int		false	"Maximum number of results"	default(50)
//	@Success		200		{array}		ledgersdk.Block
//	@Failure		400		{object}	ledgersdk.ErrorResponse	"Bad Request"
//	@Router			/v1/blocks/search [get]
func (h *LogsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	blocks, err := h.Audit.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, blocksToSDK(blocks))
}

// HandleTrail handles GET /v1/trail
//
//	@Summary		Get the audit trail summary
//	@Tags			Blocks
//	@Produce		json
//	@Success		200	{object}	ledgersdk.TrailResponse
//	@Failure		500	{object}	ledgersdk.ErrorResponse	"Storage failure"
//	@Router			/v1/trail [get]
func (h *LogsHandler) HandleTrail(w http.ResponseWriter, r *http.Request) {
	info, err := h.Audit.Trail(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.TrailResponse{
		BlockCount:     info.BlockCount,
		HeadHash:       hex.EncodeToString(info.HeadHash),
		FirstBlockTime: info.FirstBlockTime,
		LastBlockTime:  info.LastBlockTime,
	})
}
