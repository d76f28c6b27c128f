package embeddings

import "errors"

// ErrUnavailable indicates the embedding backend could not be reached or
// kept failing after retries. Callers map it to a 503 on the API surface.
var ErrUnavailable = errors.New("embedding service unavailable")
