package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glorin2500/Sentinel-sub000/internal/idgen"
)

// PostgresStore persists scan history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed scan history store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the scan_history table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scan_history (
			id          VARCHAR(36) PRIMARY KEY,
			user_id     VARCHAR(64) NOT NULL DEFAULT '',
			identifier  VARCHAR(100) NOT NULL,
			amount      NUMERIC(14,2),
			ts_millis   BIGINT NOT NULL,
			outcome     VARCHAR(10) NOT NULL CHECK (outcome IN ('safe', 'warning', 'risky')),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scan_history_identifier
			ON scan_history (identifier, ts_millis DESC);

		CREATE INDEX IF NOT EXISTS idx_scan_history_user
			ON scan_history (user_id, ts_millis DESC);
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = idgen.WithPrefix("hist_")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	var amount sql.NullFloat64
	if tx.Amount != nil {
		amount = sql.NullFloat64{Float64: *tx.Amount, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_history (id, user_id, identifier, amount, ts_millis, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		tx.ID,
		tx.UserID,
		strings.ToLower(tx.Identifier),
		amount,
		tx.TimestampMillis,
		tx.Outcome,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history: record scan: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForScan(ctx context.Context, userID, identifier string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, identifier, amount, ts_millis, outcome, created_at
		FROM scan_history
		WHERE ($1 <> '' AND user_id = $1)
		   OR ($2 <> '' AND identifier = $2)
		ORDER BY ts_millis DESC
		LIMIT $3
	`, userID, strings.ToLower(identifier), limit)
	if err != nil {
		return nil, fmt.Errorf("history: list scans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		var amount sql.NullFloat64
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Identifier, &amount, &tx.TimestampMillis, &tx.Outcome, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		if amount.Valid {
			v := amount.Float64
			tx.Amount = &v
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count scans: %w", err)
	}
	return n, nil
}
