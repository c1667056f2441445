// Package nzbget talks to the NZBGet JSON-RPC HTTP API.
package nzbget

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tinoosan/nzbget-exporter/internal/metrics"
)

const statusPath = "/jsonrpc/status"

// Client issues authenticated requests against one NZBGet instance.
type Client struct {
	baseURL  *url.URL
	username string
	password string
	http     *http.Client
	m        *metrics.Metrics
}

// NewClient validates rawURL and returns a client whose requests time out
// after timeout. m may be nil, in which case calls are not instrumented.
func NewClient(rawURL, username, password string, timeout time.Duration, m *metrics.Metrics) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse nzbget url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("nzbget url %q: unsupported scheme %q", rawURL, baseURL.Scheme)
	}
	if baseURL.Host == "" {
		return nil, fmt.Errorf("nzbget url %q: missing host", rawURL)
	}

	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
		m:        m,
	}, nil
}

func (c *Client) BaseURL() *url.URL { return c.baseURL }
func (c *Client) HTTP() *http.Client { return c.http }

// StatusURL is the endpoint polled by Status.
func (c *Client) StatusURL() string { return c.baseURL.String() + statusPath }
