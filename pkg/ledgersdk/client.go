package ledgersdk

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the Aegis ledger service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminToken is sent as a bearer token on administrative endpoints.
	// Leave empty when the service runs without one.
	AdminToken string

	// MaxRetries bounds how often SubmitLog resends after a transport
	// failure. The request id stays the same across attempts.
	MaxRetries int
}

// NewClient creates a new ledger client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		MaxRetries: 2,
	}
}
