package refdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PostgresStore persists curated reference data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed reference data store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the reference data tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blacklist_entries (
			identifier        VARCHAR(100) PRIMARY KEY,
			reason            TEXT NOT NULL,
			severity          VARCHAR(10) NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
			report_count      INTEGER NOT NULL DEFAULT 0 CHECK (report_count >= 0),
			last_reported_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			fraud_type        VARCHAR(50) NOT NULL DEFAULT '',
			verified          BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS trusted_identifiers (
			identifier  VARCHAR(100) PRIMARY KEY,
			added_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) UpsertEntry(ctx context.Context, e *BlacklistEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blacklist_entries (identifier, reason, severity, report_count, last_reported_at, fraud_type, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identifier) DO UPDATE SET
			reason = EXCLUDED.reason,
			severity = EXCLUDED.severity,
			report_count = EXCLUDED.report_count,
			last_reported_at = EXCLUDED.last_reported_at,
			fraud_type = EXCLUDED.fraud_type,
			verified = EXCLUDED.verified
	`,
		strings.ToLower(e.Identifier),
		e.Reason,
		string(e.Severity),
		e.ReportCount,
		e.LastReportedAt,
		e.FraudType,
		e.Verified,
	)
	if err != nil {
		return fmt.Errorf("refdata: upsert blacklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, identifier string) (*BlacklistEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT identifier, reason, severity, report_count, last_reported_at, fraud_type, verified
		FROM blacklist_entries
		WHERE identifier = $1
	`, strings.ToLower(identifier))

	var e BlacklistEntry
	var severity string
	err := row.Scan(&e.Identifier, &e.Reason, &severity, &e.ReportCount, &e.LastReportedAt, &e.FraudType, &e.Verified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("refdata: get blacklist entry: %w", err)
	}
	e.Severity = Severity(severity)
	return &e, nil
}

func (s *PostgresStore) ListEntries(ctx context.Context) ([]BlacklistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, reason, severity, report_count, last_reported_at, fraud_type, verified
		FROM blacklist_entries
		ORDER BY identifier
	`)
	if err != nil {
		return nil, fmt.Errorf("refdata: list blacklist entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []BlacklistEntry
	for rows.Next() {
		var e BlacklistEntry
		var severity string
		if err := rows.Scan(&e.Identifier, &e.Reason, &severity, &e.ReportCount, &e.LastReportedAt, &e.FraudType, &e.Verified); err != nil {
			return nil, fmt.Errorf("refdata: scan blacklist entry: %w", err)
		}
		e.Severity = Severity(severity)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddTrusted(ctx context.Context, identifier string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trusted_identifiers (identifier) VALUES ($1)
		ON CONFLICT (identifier) DO NOTHING
	`, strings.ToLower(strings.TrimSpace(identifier)))
	if err != nil {
		return fmt.Errorf("refdata: add trusted identifier: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTrusted(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identifier FROM trusted_identifiers ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("refdata: list trusted identifiers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("refdata: scan trusted identifier: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
