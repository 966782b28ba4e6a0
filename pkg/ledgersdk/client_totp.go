package ledgersdk

import (
	"context"
	"net/http"
)

// CurrentTOTP returns the code for the current step. Requires the admin token.
func (c *Client) CurrentTOTP(ctx context.Context) (*TOTPCodeResponse, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodGet, "/v1/totp/current", nil, nil)
	if err != nil {
		return nil, err
	}

	var code TOTPCodeResponse
	if err := decodeJSON(resp, &code); err != nil {
		return nil, err
	}

	return &code, nil
}

// RegenerateTOTP replaces the TOTP secret. Codes from the old secret stop
// working immediately. Requires the admin token.
func (c *Client) RegenerateTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodPost, "/v1/totp/regenerate", nil, nil)
	if err != nil {
		return nil, err
	}

	var enroll TOTPEnrollResponse
	if err := decodeJSON(resp, &enroll); err != nil {
		return nil, err
	}

	return &enroll, nil
}
