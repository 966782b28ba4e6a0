package ledgersdk

import (
	"context"
	"net/http"
	"net/url"
)

// RotateKey generates a new signing key and retires the current one.
// Requires the admin token.
func (c *Client) RotateKey(ctx context.Context) (*RotateKeyResponse, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodPost, "/v1/keys/rotate", nil, nil)
	if err != nil {
		return nil, err
	}

	var rotateResp RotateKeyResponse
	if err := decodeJSON(resp, &rotateResp); err != nil {
		return nil, err
	}

	return &rotateResp, nil
}

// ListKeys returns all signing keys with their status.
func (c *Client) ListKeys(ctx context.Context) ([]SigningKeyInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/keys", nil, nil)
	if err != nil {
		return nil, err
	}

	var keys []SigningKeyInfo
	if err := decodeJSON(resp, &keys); err != nil {
		return nil, err
	}

	return keys, nil
}

// RetireKey retires a specific signing key by its key ID.
// Requires the admin token.
func (c *Client) RetireKey(ctx context.Context, kid string) error {
	path := "/v1/keys/" + url.PathEscape(kid) + "/retire"

	resp, err := c.doAdminRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// GetPublicKey returns one public key. An empty kid selects the active key.
func (c *Client) GetPublicKey(ctx context.Context, kid string) (*PublicKeyResponse, error) {
	path := "/v1/keys/public"
	if kid != "" {
		path += "?" + url.Values{"key_id": {kid}}.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var pk PublicKeyResponse
	if err := decodeJSON(resp, &pk); err != nil {
		return nil, err
	}

	return &pk, nil
}

// GetJWKS retrieves the JSON Web Key Set of every signing key.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks); err != nil {
		return nil, err
	}

	return &jwks, nil
}
