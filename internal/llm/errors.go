package llm

import "errors"

var (
	// ErrMissingAPIKey is returned when no Gemini API key is configured.
	ErrMissingAPIKey = errors.New("gemini API key is required")

	// ErrQuotaExhausted is returned when the provider rejects the call for
	// quota/rate reasons. Never retried; callers fall back to manual mode.
	ErrQuotaExhausted = errors.New("generative provider quota exhausted")

	// ErrProviderUnavailable is returned for transient provider failures
	// (timeouts, 5xx). Retried with backoff up to the configured bound.
	ErrProviderUnavailable = errors.New("generative provider unavailable")

	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")
)
