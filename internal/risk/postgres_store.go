package risk

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgresStore persists verdicts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed verdict store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the verdicts table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verdicts (
			id             VARCHAR(36) PRIMARY KEY,
			identifier     VARCHAR(100) NOT NULL,
			score          INTEGER NOT NULL CHECK (score >= 0 AND score <= 100),
			level          VARCHAR(10) NOT NULL CHECK (level IN ('safe', 'caution', 'warning', 'danger')),
			reasons        TEXT[] NOT NULL DEFAULT '{}',
			fraud_type     VARCHAR(50) NOT NULL DEFAULT '',
			confidence     INTEGER NOT NULL CHECK (confidence >= 0 AND confidence <= 100),
			recommendation TEXT NOT NULL,
			evaluated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_verdicts_identifier
			ON verdicts (identifier, evaluated_at DESC);

		CREATE INDEX IF NOT EXISTS idx_verdicts_dangers
			ON verdicts (evaluated_at DESC) WHERE level = 'danger';
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, v *Verdict) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verdicts (id, identifier, score, level, reasons, fraud_type, confidence, recommendation, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		v.ID,
		strings.ToLower(v.Identifier),
		v.Score,
		string(v.Level),
		pq.Array(v.Reasons),
		v.FraudType,
		v.Confidence,
		v.Recommendation,
		v.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("risk: record verdict: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByIdentifier(ctx context.Context, identifier string, limit int, opts ...ListOption) ([]*Verdict, error) {
	o := applyListOpts(opts)
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, identifier, score, level, reasons, fraud_type, confidence, recommendation, evaluated_at
		FROM verdicts
		WHERE identifier = $1
		ORDER BY evaluated_at DESC
		LIMIT $2`
	args := []any{strings.ToLower(identifier), limit}
	if o.cursor != nil {
		query = `
		SELECT id, identifier, score, level, reasons, fraud_type, confidence, recommendation, evaluated_at
		FROM verdicts
		WHERE identifier = $1 AND evaluated_at < $3
		ORDER BY evaluated_at DESC
		LIMIT $2`
		args = append(args, o.cursor.CreatedAt)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("risk: list verdicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Verdict
	for rows.Next() {
		var v Verdict
		var level string
		if err := rows.Scan(&v.ID, &v.Identifier, &v.Score, &level, pq.Array(&v.Reasons),
			&v.FraudType, &v.Confidence, &v.Recommendation, &v.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("risk: scan verdict: %w", err)
		}
		v.Level = Level(level)
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByLevel(ctx context.Context) (map[Level]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level, COUNT(*) FROM verdicts GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("risk: count verdicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[Level]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("risk: scan verdict count: %w", err)
		}
		counts[Level(level)] = n
	}
	return counts, rows.Err()
}
