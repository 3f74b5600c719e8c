// Package llm wraps the Gemini SDK behind the narrow contract the pipeline
// needs: render a prompt in, get free-form text back, with transport retries
// and quota classification handled here.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"pivotnote/internal/config"
	"pivotnote/internal/logger"
)

const (
	// DefaultFastModel handles enrichment and assembly calls.
	DefaultFastModel = "gemini-2.0-flash"
	// DefaultQualityModel handles grid analysis and deep dive research.
	DefaultQualityModel = "gemini-2.5-pro"

	defaultMaxRetries = 3
	backoffBase       = 500 * time.Millisecond
)

// Client is a Gemini-backed text generator with model-tier selection.
type Client struct {
	gClient      *genai.Client
	fastModel    string
	qualityModel string
	maxRetries   int
	maxTokens    int32
	temperature  float32
	timeout      time.Duration
}

// NewClient creates a Gemini client from config. The API key comes from
// config or the GEMINI_API_KEY environment variable (loaded by config).
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		gClient:      gClient,
		fastModel:    cfg.Gemini.FastModel,
		qualityModel: cfg.Gemini.QualityModel,
		maxRetries:   cfg.Gemini.MaxRetries,
		maxTokens:    cfg.Gemini.MaxTokens,
		temperature:  cfg.Gemini.Temperature,
		timeout:      cfg.GeminiTimeout(),
	}
	if c.fastModel == "" {
		c.fastModel = DefaultFastModel
	}
	if c.qualityModel == "" {
		c.qualityModel = DefaultQualityModel
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	return c, nil
}

// ModelFor maps a configured tier to a concrete model name.
func (c *Client) ModelFor(tier config.ModelTier) string {
	if tier == config.TierQuality {
		return c.qualityModel
	}
	return c.fastModel
}

// Generate sends the prompt to the model selected by tier and returns the raw
// response text. Transient failures are retried with exponential backoff;
// quota exhaustion surfaces immediately as ErrQuotaExhausted.
func (c *Client) Generate(ctx context.Context, prompt string, tier config.ModelTier) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	model := c.ModelFor(tier)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffBase << (attempt - 1)
			logger.Warn("retrying generative call", "model", model, "attempt", attempt+1, "delay", delay.String())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.generateOnce(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrQuotaExhausted) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("generative call failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	cfg := &genai.GenerateContentConfig{}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}
	if c.temperature > 0 {
		temp := c.temperature
		cfg.Temperature = &temp
	}

	resp, err := c.gClient.Models.GenerateContent(callCtx, model, contents, cfg)
	if err != nil {
		return "", classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// classifyError splits provider failures into the quota vs transient buckets
// the retry policy cares about. A caller-side timeout counts as transient.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: call timed out", ErrProviderUnavailable)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED":
			return fmt.Errorf("%w: %s", ErrQuotaExhausted, apiErr.Message)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %s", ErrProviderUnavailable, apiErr.Message)
		}
		return fmt.Errorf("generative call rejected: %w", err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429") {
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
