// ABOUTME: Default HTTP transport implementing the dispatcher's injected-transport contract.
// ABOUTME: Maps non-2xx responses into structured APIError values with details and request ids.

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/nv/internal/runner"
)

// DefaultTimeout bounds a single API call. There is no retry: a failure is
// mapped and returned immediately.
const DefaultTimeout = 30 * time.Second

// New builds a transport function that performs real HTTP calls against
// baseURL, sending apiKey as a bearer token. A nil client gets a default
// with DefaultTimeout.
func New(baseURL, apiKey string, client *http.Client) runner.Transport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	base := strings.TrimSuffix(baseURL, "/")

	return func(ctx context.Context, req runner.Request) (any, error) {
		target := base + req.Path
		if len(req.Query) > 0 {
			values := url.Values{}
			for k, v := range req.Query {
				values.Set(k, v)
			}
			target += "?" + values.Encode()
		}

		var body io.Reader
		if req.Body != nil {
			data, err := json.Marshal(req.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			body = bytes.NewReader(data)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Accept", "application/json")
		if req.Body != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			// Network and timeout errors pass through untouched; the
			// error mapper inspects their messages for markers.
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, decodeAPIError(resp, data)
		}
		if len(data) == 0 {
			return nil, nil
		}

		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			// Non-JSON success bodies are returned verbatim.
			return string(data), nil
		}
		return decoded, nil
	}
}

// decodeAPIError builds a structured APIError from an error response body,
// falling back to the raw body when it is not the expected JSON shape.
func decodeAPIError(resp *http.Response, data []byte) *runner.APIError {
	apiErr := &runner.APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || (apiErr.Message == "" && apiErr.Code == "") {
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
	}
	apiErr.Status = resp.StatusCode
	if apiErr.RequestID == "" {
		apiErr.RequestID = resp.Header.Get("X-Request-Id")
	}
	return apiErr
}
