// Package audit provides the PostgreSQL-backed turn audit archive. Every
// committed turn can be recorded with its decision trace summary and replay
// hash, giving operators an offline record to verify determinism against.
//
// The archive is strictly write-behind: the voice pipeline never reads from
// it and never blocks on it, so audit availability cannot affect response
// bytes.
package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlTurnAudit = `
CREATE TABLE IF NOT EXISTS turn_audit (
    id                  BIGSERIAL    PRIMARY KEY,
    session_id          TEXT         NOT NULL,
    turn_index          INTEGER      NOT NULL,
    intent              TEXT         NOT NULL,
    skeleton            TEXT         NOT NULL DEFAULT '',
    guardrail_category  TEXT         NOT NULL,
    guardrail_severity  TEXT         NOT NULL,
    fallback_level      TEXT         NOT NULL DEFAULT '',
    replay_hash         TEXT         NOT NULL,
    created_at          TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_turn_audit_session_id
    ON turn_audit (session_id);

CREATE INDEX IF NOT EXISTS idx_turn_audit_session_turn
    ON turn_audit (session_id, turn_index);
`

// Migrate ensures the audit schema exists. It is idempotent and safe to run
// on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlTurnAudit); err != nil {
		return fmt.Errorf("audit: migrate: %w", err)
	}
	return nil
}
