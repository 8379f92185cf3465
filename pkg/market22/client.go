package market22

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
)

const DefaultBaseURL = "https://api.market22.com/v1"

// Client calls the Market22 REST API with a product API key.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("market22 api error: status=%d body=%s", e.Status, e.Body)
	}
	return fmt.Sprintf("market22 api error: status=%d", e.Status)
}

func (c Client) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !c.Configured() {
		return 0, fmt.Errorf("market22: missing api key")
	}

	var body io.Reader
	if reqBody != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
		body = &buf
	}

	u := strings.TrimSuffix(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Body: string(b)}
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode market22 response failed: %w body=%s", err, string(b))
		}
	}
	return resp.StatusCode, nil
}

func escapeID(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
