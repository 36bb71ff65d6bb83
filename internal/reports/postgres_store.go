package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
)

// PostgresStore persists fraud reports in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed report store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the fraud_reports table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fraud_reports (
			id          VARCHAR(36) PRIMARY KEY,
			identifier  VARCHAR(100) NOT NULL,
			reason      TEXT NOT NULL,
			fraud_type  VARCHAR(50) NOT NULL DEFAULT '',
			severity    VARCHAR(10) NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
			reporter_id VARCHAR(64) NOT NULL DEFAULT '',
			verified    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_fraud_reports_identifier
			ON fraud_reports (identifier, created_at DESC);
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, r *Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_reports (id, identifier, reason, fraud_type, severity, reporter_id, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		r.ID,
		strings.ToLower(r.Identifier),
		r.Reason,
		r.FraudType,
		string(r.Severity),
		r.ReporterID,
		r.Verified,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("reports: create report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, identifier, reason, fraud_type, severity, reporter_id, verified, created_at
		FROM fraud_reports
		WHERE id = $1
	`, id)

	r, err := scanReport(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reports: get report: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListByIdentifier(ctx context.Context, identifier string) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identifier, reason, fraud_type, severity, reporter_id, verified, created_at
		FROM fraud_reports
		WHERE identifier = $1
		ORDER BY created_at DESC
	`, strings.ToLower(identifier))
	if err != nil {
		return nil, fmt.Errorf("reports: list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("reports: scan report: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkVerified(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE fraud_reports SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reports: mark verified: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fraud_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("reports: count reports: %w", err)
	}
	return n, nil
}

func scanReport(scan func(dest ...any) error) (*Report, error) {
	var r Report
	var severity string
	if err := scan(&r.ID, &r.Identifier, &r.Reason, &r.FraudType, &severity, &r.ReporterID, &r.Verified, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Severity = refdata.Severity(severity)
	return &r, nil
}
