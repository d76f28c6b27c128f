package llm

import "context"

// Provider generates chat completions. Implementations map transient
// backend failures to ErrUnavailable so callers can surface a retry
// signal instead of a hard error.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name identifies the provider for logging.
	Name() string
}
