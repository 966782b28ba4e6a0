package ledgersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListAlerts returns alerts newest first. A limit of zero uses the server
// default. Requires the admin token.
func (c *Client) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]Alert, error) {
	q := url.Values{}
	if activeOnly {
		q.Set("active_only", "true")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/alerts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doAdminRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	if err := decodeJSON(resp, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateAlert raises a manual alert. Requires the admin token.
func (c *Client) CreateAlert(ctx context.Context, req CreateAlertRequest) (*Alert, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := c.doAdminRequest(ctx, http.MethodPost, "/v1/alerts", bytes.NewReader(body), headers)
	if err != nil {
		return nil, err
	}

	var a Alert
	if err := decodeJSON(resp, &a, http.StatusCreated); err != nil {
		return nil, err
	}
	return &a, nil
}

// AcknowledgeAlert marks an open alert as seen. Requires the admin token.
func (c *Client) AcknowledgeAlert(ctx context.Context, id string) (*Alert, error) {
	return c.alertAction(ctx, id, "acknowledge")
}

// ResolveAlert closes an alert. Requires the admin token.
func (c *Client) ResolveAlert(ctx context.Context, id string) (*Alert, error) {
	return c.alertAction(ctx, id, "resolve")
}

// AlertStats returns alert counts. Requires the admin token.
func (c *Client) AlertStats(ctx context.Context) (*AlertStatsResponse, error) {
	resp, err := c.doAdminRequest(ctx, http.MethodGet, "/v1/alerts/stats", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats AlertStatsResponse
	if err := decodeJSON(resp, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) alertAction(ctx context.Context, id, action string) (*Alert, error) {
	path := "/v1/alerts/" + url.PathEscape(id) + "/" + action

	resp, err := c.doAdminRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var a Alert
	if err := decodeJSON(resp, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
