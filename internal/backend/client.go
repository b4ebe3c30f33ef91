// Package backend implements the HTTP client for the external multi-agent
// analysis service. Analysis calls are long-running and are never retried;
// failure semantics are mapped to the orchestrator's error kinds here.
package backend

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

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

// Client talks to the analysis backend over HTTP with bearer auth
type Client struct {
	baseURL        string
	token          string
	analyzeClient  *http.Client
	compareClient  *http.Client
	metadataClient *http.Client
	logger         arbor.ILogger
}

// NewClient creates a backend client from configuration. Separate underlying
// http.Clients carry the per-call timeouts: per-ticker analysis, the longer
// comparison cap, and short metadata calls (history).
func NewClient(config *common.BackendConfig, logger arbor.ILogger) interfaces.BackendClient {
	return &Client{
		baseURL:        strings.TrimRight(config.BaseURL, "/"),
		token:          config.Token,
		analyzeClient:  &http.Client{Timeout: config.RequestTimeout},
		compareClient:  &http.Client{Timeout: config.CompareTimeout},
		metadataClient: &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
	}
}

// analyzeResponse is the per-ticker endpoint envelope
type analyzeResponse struct {
	Reports map[string]map[string]any `json:"reports"`
}

// AnalyzeTicker requests a single-ticker analysis via the custom-summary
// endpoint and unwraps the report payload for that symbol
func (c *Client) AnalyzeTicker(ctx context.Context, symbol string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/news/custom-summary?tickers=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.do(ctx, c.analyzeClient, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response for %s: %w", symbol, err)
	}

	payload, ok := parsed.Reports[symbol]
	if !ok {
		// Tolerate a single-report response keyed differently
		for _, report := range parsed.Reports {
			payload = report
			break
		}
	}
	if payload == nil {
		return nil, fmt.Errorf("no report for %s in analysis response", symbol)
	}

	// The backend grades each payload: success and fallback carry renderable
	// text, timeout carries a sentinel-worthy stub, error carries nothing
	if status, _ := payload["status"].(string); status == "error" {
		return nil, fmt.Errorf("%s", payloadError(payload, symbol))
	}

	return payload, nil
}

// payloadError digs the failure message out of an error-status payload
func payloadError(payload map[string]any, symbol string) string {
	if msg, ok := payload["error"].(string); ok && msg != "" {
		return msg
	}
	if prediction, ok := payload["prediction"].(map[string]any); ok {
		if msg, ok := prediction["error"].(string); ok && msg != "" {
			return msg
		}
	}
	return "analysis failed for " + symbol
}

// Compare requests a comparison across the ticker set
func (c *Client) Compare(ctx context.Context, tickers []string) (*interfaces.CompareResponse, error) {
	endpoint := c.baseURL + "/news/comparison/compare"

	reqBody, err := json.Marshal(map[string][]string{"tickers": tickers})
	if err != nil {
		return nil, fmt.Errorf("failed to encode comparison request: %w", err)
	}

	body, err := c.do(ctx, c.compareClient, http.MethodPost, endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed interfaces.CompareResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode comparison response: %w", err)
	}

	return &parsed, nil
}

// ListHistory fetches the remote analysis history
func (c *Client) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	body, err := c.do(ctx, c.metadataClient, http.MethodGet, c.baseURL+"/analysis-history", nil)
	if err != nil {
		return nil, err
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	return entries, nil
}

// GetHistory fetches one history entry by analysis ID
func (c *Client) GetHistory(ctx context.Context, id string) (*models.HistoryEntry, error) {
	body, err := c.do(ctx, c.metadataClient, http.MethodGet, c.baseURL+"/analysis-history/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var entry models.HistoryEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode history entry: %w", err)
	}

	return &entry, nil
}

// DeleteHistory removes one history entry by analysis ID
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	_, err := c.do(ctx, c.metadataClient, http.MethodDelete, c.baseURL+"/analysis-history/"+url.PathEscape(id), nil)
	return err
}

// do executes one request with bearer auth and maps failure statuses onto
// user-facing error kinds. The server body is never surfaced in errors.
func (c *Client) do(ctx context.Context, client *http.Client, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("Backend request failed")
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("Backend request completed")

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, interfaces.ErrAuth
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
