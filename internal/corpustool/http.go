package corpustool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/gatecompass/internal/domain/types"
)

const maxErrorBody = 4 << 10

// HTTPClient fetches reports from a running service.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Report fetches /report for [from, to]. Zero years are left to the service.
func (c *HTTPClient) Report(ctx context.Context, from, to int) (types.Report, error) {
	q := url.Values{}
	if from != 0 {
		q.Set("from", strconv.Itoa(from))
	}
	if to != 0 {
		q.Set("to", strconv.Itoa(to))
	}
	u := c.baseURL + "/report"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var r types.Report
	if err := c.getJSON(ctx, u, &r); err != nil {
		return types.Report{}, err
	}
	return r, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body types.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &body) == nil && body.Kind != "" {
			return fmt.Errorf("%w: %d %s: %s", ErrService, resp.StatusCode, body.Kind, body.Message)
		}
		return fmt.Errorf("%w: status %d", ErrService, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
