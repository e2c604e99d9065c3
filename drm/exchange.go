package drm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/duocast-cli/duocast/constant"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/network"
	"github.com/spf13/viper"
)

// Exchange performs license round trips on behalf of a playback engine that
// cannot reach the license server through its own networking stack.
type Exchange struct {
	server         string
	requestFilter  RequestFilter
	responseFilter ResponseFilter
	client         *http.Client
}

// NewExchange creates a license exchange against the given server URL.
// Filters may be nil. The HTTP client is chosen based on configuration:
// the browser-fingerprint client when drm.impersonate_browser is set,
// the shared tuned client otherwise.
func NewExchange(server string, requestFilter RequestFilter, responseFilter ResponseFilter) *Exchange {
	client := network.Client
	if viper.GetBool(key.DrmImpersonateBrowser) {
		client = network.BrowserClient
	}

	return &Exchange{
		server:         server,
		requestFilter:  requestFilter,
		responseFilter: responseFilter,
		client:         client,
	}
}

// Server returns the configured license server URL.
func (e *Exchange) Server() string {
	return e.server
}

// Post decodes the base64 license payload and performs the HTTP round trip
// with the configured filters applied. The status and body are returned even
// for non-200 responses so the caller can hand the failure back to the engine's
// own error path; err is non-nil only when no response was obtained at all.
func (e *Exchange) Post(payload string) (status int, body []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("decode license payload: %w", err)
	}

	req := &Request{
		URL: e.server,
		Headers: map[string]string{
			"Content-Type": "application/octet-stream",
			"User-Agent":   constant.UserAgent,
		},
		Body: raw,
	}

	if e.requestFilter != nil {
		if err := e.requestFilter(req); err != nil {
			return 0, nil, fmt.Errorf("license request filter: %w", err)
		}
	}

	httpReq, err := http.NewRequest(http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return 0, nil, fmt.Errorf("build license request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("license request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, nil, fmt.Errorf("read license response: %w", err)
	}

	resp := &Response{
		Status:  httpResp.StatusCode,
		Headers: httpResp.Header,
		Body:    respBody,
	}

	if e.responseFilter != nil {
		if err := e.responseFilter(resp); err != nil {
			return resp.Status, nil, fmt.Errorf("license response filter: %w", err)
		}
	}

	if resp.Status != http.StatusOK {
		log.Warnf("license server %s answered %d", e.server, resp.Status)
	}

	return resp.Status, resp.Body, nil
}
