// Package postgres is a lending.Store on PostgreSQL, usable with either a
// pgx pool or a sqlx database.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"library-lending-service/internal/postgres/internal/adapters"
)

//go:embed schema.sql
var schema string

const (
	dialectPostgres = "postgres"
	tableBooks      = "books"
	tableLoans      = "loan_records"

	colID              = "id"
	colISBN            = "isbn"
	colTitle           = "title"
	colAuthor          = "author"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colCreatedAt       = "created_at"
	colUpdatedAt       = "updated_at"
	colPatronID        = "patron_id"
	colBookID          = "book_id"
	colBookTitle       = "book_title"
	colBookAuthor      = "book_author"
	colStatus          = "status"
	colBorrowedAt      = "borrowed_at"
	colDueAt           = "due_at"
	colReturnedAt      = "returned_at"

	logMsgSQLExecuted   = "executed sql"
	logMsgBuildFailed   = "failed to build query"
	logMsgRollback      = "transaction rolled back"
	logMsgRollbackError = "failed to roll back transaction"
	logAttrQuery        = "query"
	logAttrDurationMS   = "duration_ms"
	logAttrError        = "error"
)

// ErrNilDatabaseConnection is returned when a constructor receives no database
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// Logger interface for SQL query logging and error reporting
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store is a lending.Store on PostgreSQL
type Store struct {
	db     adapters.DBAdapter
	logger Logger
}

// Option defines a functional option for configuring Store
type Option func(*Store) error

// WithLogger sets the logger. Debug level receives every SQL statement with its duration.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStoreFromPGXPool creates a Store using a pgx pool
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newStore(adapters.NewPGXAdapter(db), options)
}

// NewStoreFromSQLX creates a Store using a sqlx database
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newStore(adapters.NewSQLXAdapter(db), options)
}

func newStore(db adapters.DBAdapter, options []Option) (*Store, error) {
	s := &Store{db: db}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates the tables and indexes when they do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// queryer is satisfied by both the adapter and an open transaction
type queryer interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// toSQL renders a goqu statement with interpolated values
func (s *Store) toSQL(stmt interface {
	ToSQL() (string, []interface{}, error)
}) (string, error) {
	query, _, err := stmt.ToSQL()
	if err != nil {
		s.logError(logMsgBuildFailed, logAttrError, err.Error())
		return "", fmt.Errorf("failed to build query: %w", err)
	}
	return query, nil
}

func (s *Store) query(ctx context.Context, db queryer, query string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := db.Query(ctx, query)
	s.logQuery(query, time.Since(start))
	return rows, err
}

func (s *Store) exec(ctx context.Context, db queryer, query string) (int64, error) {
	start := time.Now()
	result, err := db.Exec(ctx, query)
	s.logQuery(query, time.Since(start))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) closeRows(rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn("failed to close database rows", logAttrError, err.Error())
	}
}

func (s *Store) logQuery(query string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted, logAttrQuery, query, logAttrDurationMS, duration.Milliseconds())
	}
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Store) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
