// Package generate calls the external AI content-generation endpoint and
// turns its response into a section document. Failures never block
// editing: callers fall back to FallbackDocument.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/config"
)

// Client is an HTTP client for the generation endpoint.
type Client struct {
	url        string
	apiKey     string
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *zap.Logger
}

// NewClient builds a client from the generator configuration.
func NewClient(cfg config.GeneratorConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.GetAPIKey(),
		maxRetries: cfg.GetRetryMaxRetries(),
		baseDelay:  cfg.GetRetryBaseDelay(),
		maxDelay:   cfg.GetRetryMaxDelay(),
		logger:     logger,
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
	}
}

// request is the generation request body.
type request struct {
	Type    string  `json:"type"`
	Payload payload `json:"payload"`
}

type payload struct {
	Property    agentpages.PropertyMeta      `json:"property"`
	Preferences agentpages.DesignPreferences `json:"preferences"`
}

// response is the generation response body: a layout holding the section
// document.
type response struct {
	Layout *layout `json:"layout"`
}

type layout struct {
	Sections     []agentpages.Section `json:"sections"`
	GlobalStyles map[string]any       `json:"globalStyles"`
}

// Generate asks the endpoint for a full document for the given listing.
// The returned document is normalized; the error is non-nil when the
// endpoint failed or answered with something that is not a layout, and in
// that case no partial document is returned.
func (c *Client) Generate(ctx context.Context, meta agentpages.PropertyMeta, prefs agentpages.DesignPreferences) (agentpages.Document, error) {
	if c.url == "" {
		return agentpages.Document{}, fmt.Errorf("generator: no endpoint configured")
	}

	body, err := json.Marshal(request{
		Type:    "generate_content",
		Payload: payload{Property: meta, Preferences: prefs},
	})
	if err != nil {
		return agentpages.Document{}, fmt.Errorf("generator: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return agentpages.Document{}, ctx.Err()
		}

		doc, retryable, err := c.doGenerate(ctx, body)
		if err == nil {
			if attempt > 0 {
				c.logger.Info("generation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return doc, nil
		}
		lastErr = err
		if !retryable {
			return agentpages.Document{}, err
		}

		if attempt < c.maxRetries {
			delay := c.backoff(attempt)
			c.logger.Warn("generation attempt failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return agentpages.Document{}, ctx.Err()
			}
		}
	}

	return agentpages.Document{}, lastErr
}

// doGenerate performs one request. The second return value reports
// whether the failure is worth retrying.
func (c *Client) doGenerate(ctx context.Context, body []byte) (agentpages.Document, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return agentpages.Document{}, false, fmt.Errorf("generator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return agentpages.Document{}, true, fmt.Errorf("generator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return agentpages.Document{}, true, fmt.Errorf("generator: server error: %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return agentpages.Document{}, false, fmt.Errorf("generator: unexpected status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return agentpages.Document{}, true, fmt.Errorf("generator: read response: %w", err)
	}

	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return agentpages.Document{}, false, agentpages.NewDocumentError("generator", "malformed response").
			WithHint(err.Error())
	}
	if r.Layout == nil {
		return agentpages.Document{}, false, agentpages.NewDocumentError("generator", "response has no layout").
			WithHint(`expected {"layout": {"sections": [...]}}`)
	}

	doc := agentpages.Document{
		Sections:     r.Layout.Sections,
		GlobalStyles: r.Layout.GlobalStyles,
	}
	doc.Normalize()
	return doc, false, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(c.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}
