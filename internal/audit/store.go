package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TurnRecord is one archived turn.
type TurnRecord struct {
	SessionID         string
	TurnIndex         int
	Intent            string
	Skeleton          string
	GuardrailCategory string
	GuardrailSeverity string
	FallbackLevel     string
	ReplayHash        string
}

// Store is the PostgreSQL-backed audit archive. All methods are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn and runs [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("audit store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("audit store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// RecordTurn appends one turn record.
func (s *Store) RecordTurn(ctx context.Context, rec TurnRecord) error {
	const q = `
		INSERT INTO turn_audit
		    (session_id, turn_index, intent, skeleton, guardrail_category, guardrail_severity, fallback_level, replay_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, q,
		rec.SessionID,
		rec.TurnIndex,
		rec.Intent,
		rec.Skeleton,
		rec.GuardrailCategory,
		rec.GuardrailSeverity,
		rec.FallbackLevel,
		rec.ReplayHash,
	)
	if err != nil {
		return fmt.Errorf("audit store: record turn: %w", err)
	}
	return nil
}

// BySession returns the archived turns for sessionID in turn order, capped
// at limit when limit is positive.
func (s *Store) BySession(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	q := `
		SELECT session_id, turn_index, intent, skeleton, guardrail_category, guardrail_severity, fallback_level, replay_hash
		FROM   turn_audit
		WHERE  session_id = $1
		ORDER  BY turn_index, id`
	args := []any{sessionID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("audit store: by session: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		if err := rows.Scan(
			&rec.SessionID,
			&rec.TurnIndex,
			&rec.Intent,
			&rec.Skeleton,
			&rec.GuardrailCategory,
			&rec.GuardrailSeverity,
			&rec.FallbackLevel,
			&rec.ReplayHash,
		); err != nil {
			return nil, fmt.Errorf("audit store: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit store: rows: %w", err)
	}
	return out, nil
}

// Ping reports database reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
