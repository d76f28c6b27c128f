package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/documind-hq/documind/internal/db"
	"github.com/documind-hq/documind/internal/rag"
)

const defaultLimit = 50

// Store persists chat history in SQLite.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Append records an answered query for a session.
func (s *Store) Append(ctx context.Context, sessionID, query, response string, sources []rag.Source, responseTime float64) error {
	if sources == nil {
		sources = []rag.Source{}
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_history (session_id, query, response, sources, response_time)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, query, response, string(encoded), responseTime)
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// BySession returns a session's records, most recent first.
func (s *Store) BySession(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, query, response, sources, response_time, timestamp
		FROM chat_history
		WHERE session_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// QueryCount returns the total number of recorded queries.
func (s *Store) QueryCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_history`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// AvgResponseTime returns the mean response time in seconds across all
// recorded queries, or 0 when nothing is recorded.
func (s *Store) AvgResponseTime(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT AVG(response_time) FROM chat_history`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("averaging response time: %w", err)
	}
	return avg.Float64, nil
}

// PurgeSession deletes all records for a session.
func (s *Store) PurgeSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_history WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("purging session: %w", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var encoded string
	if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Query, &rec.Response, &encoded, &rec.ResponseTime, &rec.Timestamp); err != nil {
		return nil, fmt.Errorf("scanning history record: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &rec.Sources); err != nil {
		return nil, fmt.Errorf("decoding sources: %w", err)
	}
	if rec.Sources == nil {
		rec.Sources = []rag.Source{}
	}
	return &rec, nil
}
