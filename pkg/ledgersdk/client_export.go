package ledgersdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Export streams blocks [start, end) in format ("json", "jsonl" or "csv")
// to w. An end of zero exports up to the head. Large exports may outlive
// the default HTTP client timeout; set HTTPClient accordingly.
func (c *Client) Export(ctx context.Context, w io.Writer, format string, start, end uint64) error {
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	q.Set("start", strconv.FormatUint(start, 10))
	if end > 0 {
		q.Set("end", strconv.FormatUint(end, 10))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/export?"+q.Encode(), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}
