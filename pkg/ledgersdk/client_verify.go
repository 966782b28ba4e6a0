package ledgersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Verify walks the whole chain on the server.
func (c *Client) Verify(ctx context.Context) (*VerifyResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/verify", nil, nil)
	if err != nil {
		return nil, err
	}

	var res VerifyResponse
	if err := decodeJSON(resp, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// VerifyData checks data against an expected SHA-256 digest.
func (c *Client) VerifyData(ctx context.Context, req VerifyDataRequest) (*VerifyDataResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/verify/data", bytes.NewReader(body), headers)
	if err != nil {
		return nil, err
	}

	var res VerifyDataResponse
	if err := decodeJSON(resp, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// VerifyExport uploads an export file and has the server check it against
// its keys. format is json, jsonl or csv; empty means jsonl.
func (c *Client) VerifyExport(ctx context.Context, format string, body io.Reader) (*VerifyResponse, error) {
	path := "/v1/verify/chain"
	if format != "" {
		path += "?" + url.Values{"format": {format}}.Encode()
	}

	headers := map[string]string{
		"Content-Type": exportContentType(format),
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, body, headers)
	if err != nil {
		return nil, err
	}

	var res VerifyResponse
	if err := decodeJSON(resp, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func exportContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv"
	default:
		return "application/x-ndjson"
	}
}

// Stats returns the verification history summary with up to limit recent runs.
func (c *Client) Stats(ctx context.Context, limit int) (*StatsResponse, error) {
	path := "/v1/verify/stats"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var stats StatsResponse
	if err := decodeJSON(resp, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}
