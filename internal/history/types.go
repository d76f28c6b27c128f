package history

import (
	"time"

	"github.com/documind-hq/documind/internal/rag"
)

// Record is one answered query in a chat session. Only successful
// answers are recorded; fallback responses and failed attempts are not.
type Record struct {
	ID           int64        `json:"id"`
	SessionID    string       `json:"session_id"`
	Query        string       `json:"query"`
	Response     string       `json:"response"`
	Sources      []rag.Source `json:"sources"`
	ResponseTime float64      `json:"response_time"`
	Timestamp    time.Time    `json:"timestamp"`
}
