package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrConflict is returned when an insert violates a unique constraint
var ErrConflict = errors.New("record already exists")

// Driver names accepted by sqlx
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Repository handles database operations for users and prediction history
type Repository struct {
	db     *sqlx.DB
	driver string
	// vectorColumn is true when feature_vector uses the pgvector type
	vectorColumn bool
}

// ParseDatabaseURL maps a DATABASE_URL onto a driver name and DSN.
// postgres:// and postgresql:// go to lib/pq; sqlite:///path opens a file;
// a bare sqlite:// opens an in-memory database.
func ParseDatabaseURL(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" || path == ":memory:" {
			return DriverSQLite, ":memory:", nil
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(url, "file:"):
		return DriverSQLite, url, nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", url)
	}
}

// New connects to the database named by url and tunes the pool
func New(url string, maxConn, maxIdleConn int) (*Repository, error) {
	driver, dsn, err := ParseDatabaseURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// one connection so every query sees the same (possibly in-memory) database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(maxConn)
		db.SetMaxIdleConns(maxIdleConn)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db, driver: driver}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Driver returns the sqlx driver name in use
func (r *Repository) Driver() string {
	return r.driver
}

// Ping checks the connection
func (r *Repository) Ping() error {
	return r.db.Ping()
}

// rebind converts ? placeholders for the active driver
func (r *Repository) rebind(query string) string {
	return r.db.Rebind(query)
}

// isUniqueViolation recognises duplicate-key errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
