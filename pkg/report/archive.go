package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// archiveSchema keeps the full dossier as JSONB next to the columns
// analysts actually filter on.
const archiveSchema = `
CREATE TABLE IF NOT EXISTS dossiers (
	report_id    TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	threat_level INT  NOT NULL,
	scam_type    TEXT NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dossiers_session_idx ON dossiers (session_id);
`

// PostgresArchive stores dispatched dossiers for later analysis. It is an
// optional Sink: archive failures are best-effort like any other delivery
// and never reach the turn that produced the dossier.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// NewPostgresArchive connects to dsn and ensures the dossier table exists.
func NewPostgresArchive(ctx context.Context, dsn string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect archive: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	if _, err := pool.Exec(ctx, archiveSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure archive schema: %w", err)
	}
	return &PostgresArchive{pool: pool}, nil
}

// Send implements Sink.
func (a *PostgresArchive) Send(ctx context.Context, d *Dossier) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dossier: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO dossiers (report_id, session_id, threat_level, scam_type, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (report_id) DO NOTHING`,
		d.ReportID, d.SessionID, d.ThreatLevel, d.ScamFingerprint.ScamType, payload,
	)
	if err != nil {
		return fmt.Errorf("archive dossier: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (a *PostgresArchive) Close() { a.pool.Close() }
