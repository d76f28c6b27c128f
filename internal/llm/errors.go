package llm

import "errors"

// ErrUnavailable indicates the completion backend could not be reached or
// kept failing after retries. Callers map it to a 503 on the API surface.
var ErrUnavailable = errors.New("completion service unavailable")
