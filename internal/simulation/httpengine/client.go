// Package httpengine calls a remote simulation engine over HTTP.
package httpengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/simulation"
)

// Config controls how the client reaches the engine.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts simulation requests to a remote engine.
type Client struct {
	baseURL    string
	token      string
	httpClient httpDoer
}

var _ simulation.Engine = (*Client)(nil)

// NewClient constructs a client. BaseURL is required.
func NewClient(cfg Config) (*Client, error) {
	base := normalizeBaseURL(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("%s engine: base url is required", Name)
	}
	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}, nil
}

// Simulate posts the rosters and decodes the scored event stream.
func (c *Client) Simulate(ctx context.Context, req simulation.Request) (simulation.Result, error) {
	body, err := json.Marshal(toRequest(req))
	if err != nil {
		return simulation.Result{}, fmt.Errorf("encoding simulate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+simulatePath, bytes.NewReader(body))
	if err != nil {
		return simulation.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return simulation.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return simulation.Result{}, &simulation.StatusError{
			Engine:     Name,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	var payload simulateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return simulation.Result{}, fmt.Errorf("decoding simulate response: %w", err)
	}
	return payload.result(), nil
}
