package ledgersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// SubmitLog appends a record. A request id is generated when req has none,
// and transport failures are retried with that id up to MaxRetries times,
// so the record lands at most once. The service answers 201 for a new block
// and 200 when the id was already recorded; both return the block.
func (c *Client) SubmitLog(ctx context.Context, req SubmitLogRequest) (*Block, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		resp, err := c.doRequest(ctx, http.MethodPost, "/v1/logs", bytes.NewReader(body), headers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		var block Block
		if err := decodeJSON(resp, &block, http.StatusCreated, http.StatusOK); err != nil {
			return nil, err
		}
		return &block, nil
	}
	return nil, lastErr
}

// Head returns the chain tip.
func (c *Client) Head(ctx context.Context) (*HeadResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/blocks/head", nil, nil)
	if err != nil {
		return nil, err
	}

	var head HeadResponse
	if err := decodeJSON(resp, &head); err != nil {
		return nil, err
	}

	return &head, nil
}

// GetRange returns blocks with start <= index < end. An end of zero reads
// up to the head, like Export.
func (c *Client) GetRange(ctx context.Context, start, end uint64) ([]Block, error) {
	q := url.Values{}
	q.Set("start", strconv.FormatUint(start, 10))
	if end > 0 {
		q.Set("end", strconv.FormatUint(end, 10))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/blocks?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var blocks []Block
	if err := decodeJSON(resp, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// Search returns blocks whose payload matches a glob pattern, oldest first.
// A limit of zero uses the service default.
func (c *Client) Search(ctx context.Context, pattern string, limit int) ([]Block, error) {
	if pattern == "" {
		return nil, errors.New("search pattern is required")
	}

	q := url.Values{}
	q.Set("q", pattern)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/blocks/search?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var blocks []Block
	if err := decodeJSON(resp, &blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// Trail returns the chain summary.
func (c *Client) Trail(ctx context.Context) (*TrailResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/trail", nil, nil)
	if err != nil {
		return nil, err
	}

	var trail TrailResponse
	if err := decodeJSON(resp, &trail); err != nil {
		return nil, err
	}

	return &trail, nil
}
