package nzbget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

const methodStatus = "status"

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// Status is the subset of the NZBGet "status" result that the exporter
// publishes. Sizes are in megabytes as reported upstream.
type Status struct {
	DownloadRate     float64 `json:"DownloadRate"`
	ThreadCount      float64 `json:"ThreadCount"`
	UpTimeSec        float64 `json:"UpTimeSec"`
	DownloadTimeSec  float64 `json:"DownloadTimeSec"`
	RemainingSizeMB  float64 `json:"RemainingSizeMB"`
	ForcedSizeMB     float64 `json:"ForcedSizeMB"`
	DownloadedSizeMB float64 `json:"DownloadedSizeMB"`
	ArticleCacheMB   float64 `json:"ArticleCacheMB"`
	PostJobCount     float64 `json:"PostJobCount"`
}

// statusFields must all be present in a result object.
var statusFields = []string{
	"DownloadRate",
	"ThreadCount",
	"UpTimeSec",
	"DownloadTimeSec",
	"RemainingSizeMB",
	"ForcedSizeMB",
	"DownloadedSizeMB",
	"ArticleCacheMB",
	"PostJobCount",
}

type rpcResp struct {
	Version string          `json:"version"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Status performs GET {url}/jsonrpc/status with basic auth and decodes the
// result object.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	raw, err := c.call(ctx, methodStatus)
	if err != nil {
		return nil, err
	}
	st, err := decodeStatus(raw)
	if err != nil {
		c.countError(methodStatus)
		return nil, err
	}
	return st, nil
}

func (c *Client) call(ctx context.Context, method string) (json.RawMessage, error) {
	if c.m != nil {
		timer := prometheus.NewTimer(c.m.RPCLatency.WithLabelValues(method))
		defer timer.ObserveDuration()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String()+"/jsonrpc/"+method, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.countError(method)
		return nil, fmt.Errorf("nzbget %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.countError(method)
		return nil, fmt.Errorf("nzbget %s: read body: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.countError(method)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var rr rpcResp
	if err := json.Unmarshal(b, &rr); err != nil {
		c.countError(method)
		return nil, fmt.Errorf("nzbget rpc decode: %w (%s)", err, string(b))
	}
	if rr.Error != nil {
		c.countError(method)
		return nil, rr.Error
	}
	if len(rr.Result) == 0 || string(rr.Result) == "null" {
		c.countError(method)
		return nil, ErrMissingResult
	}
	return rr.Result, nil
}

func (c *Client) countError(method string) {
	if c.m != nil {
		c.m.RPCErrors.WithLabelValues(method).Inc()
	}
}

// decodeStatus requires every published field to be present and numeric.
func decodeStatus(raw json.RawMessage) (*Status, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse status result: %w", err)
	}
	for _, name := range statusFields {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("parse status result: %w", err)
	}
	return &st, nil
}
