package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/export"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/pkg/httpx"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/aussiebroadwan/aegis/pkg/slogx"
)

// writeServiceError maps a service error onto a status code and error code.
// Storage and unknown errors are logged and reported without internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, desc := classify(err)
	if status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	httpx.WriteError(w, status, code, desc)
}

func classify(err error) (status int, code, desc string) {
	switch {
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized, ledgersdk.ErrorCodeAuthenticationFailed, "TOTP code is missing, wrong, expired or already used"
	case errors.Is(err, domain.ErrKeyUnavailable):
		return http.StatusServiceUnavailable, ledgersdk.ErrorCodeKeyUnavailable, "no active signing key; rotate keys to resume appends"
	case errors.Is(err, domain.ErrOutOfRange):
		return http.StatusRequestedRangeNotSatisfiable, ledgersdk.ErrorCodeOutOfRange, err.Error()
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, ledgersdk.ErrorCodeInvalidRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ledgersdk.ErrorCodeNotFound, "not found"
	case errors.Is(err, service.ErrKeyAlreadyRetired),
		errors.Is(err, service.ErrAlertAcknowledged), errors.Is(err, service.ErrAlertResolved):
		return http.StatusConflict, ledgersdk.ErrorCodeConflict, err.Error()
	case errors.Is(err, service.ErrTOTPNotReady):
		return http.StatusServiceUnavailable, ledgersdk.ErrorCodeServerError, "TOTP secret not loaded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ledgersdk.ErrorCodeServerError, "request cancelled"
	case errors.Is(err, domain.ErrStorage):
		return http.StatusInternalServerError, ledgersdk.ErrorCodeStorageError, "storage failure"
	default:
		return http.StatusInternalServerError, ledgersdk.ErrorCodeServerError, "internal error"
	}
}

func badRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, ledgersdk.ErrorCodeInvalidRequest, desc)
}
