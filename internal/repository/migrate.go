package repository

import (
	"context"
	"fmt"
)

// Migrate creates the tables if they do not exist. On postgres it tries to
// enable pgvector so feature vectors get a vector column; without the
// extension the column falls back to text in the same "[a,b,c]" format.
func (r *Repository) Migrate(ctx context.Context) error {
	var stmts []string

	switch r.driver {
	case DriverPostgres:
		if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err == nil {
			r.vectorColumn = true
		}
		vectorType := "TEXT"
		if r.vectorColumn {
			vectorType = "vector"
		}
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				hashed_password TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS predictions (
				id BIGSERIAL PRIMARY KEY,
				owner_id BIGINT NOT NULL REFERENCES users(id),
				city TEXT NOT NULL DEFAULT '',
				neighborhood TEXT NOT NULL DEFAULT '',
				beds INTEGER NOT NULL DEFAULT 0,
				baths INTEGER NOT NULL DEFAULT 0,
				size TEXT NOT NULL DEFAULT '',
				property_type TEXT NOT NULL DEFAULT '',
				predicted_price DOUBLE PRECISION NOT NULL,
				formatted_price TEXT NOT NULL DEFAULT '',
				model_version TEXT NOT NULL DEFAULT '',
				request_id TEXT NOT NULL DEFAULT '',
				feature_vector %s,
				attributes JSONB,
				created_at TIMESTAMP NOT NULL
			)`, vectorType),
			`CREATE INDEX IF NOT EXISTS idx_predictions_owner ON predictions (owner_id, created_at DESC)`,
		}

	case DriverSQLite:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				hashed_password TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS predictions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				owner_id INTEGER NOT NULL REFERENCES users(id),
				city TEXT NOT NULL DEFAULT '',
				neighborhood TEXT NOT NULL DEFAULT '',
				beds INTEGER NOT NULL DEFAULT 0,
				baths INTEGER NOT NULL DEFAULT 0,
				size TEXT NOT NULL DEFAULT '',
				property_type TEXT NOT NULL DEFAULT '',
				predicted_price REAL NOT NULL,
				formatted_price TEXT NOT NULL DEFAULT '',
				model_version TEXT NOT NULL DEFAULT '',
				request_id TEXT NOT NULL DEFAULT '',
				feature_vector TEXT,
				attributes TEXT,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_predictions_owner ON predictions (owner_id, created_at DESC)`,
		}

	default:
		return fmt.Errorf("no migrations for driver %q", r.driver)
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// VectorColumn reports whether feature vectors are stored as pgvector
func (r *Repository) VectorColumn() bool {
	return r.vectorColumn
}
