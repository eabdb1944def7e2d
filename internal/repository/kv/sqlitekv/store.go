// Package sqlitekv provides a SQLite-backed kv.Store.
//
// Keys live in a single table ordered by key; each Save is one upsert inside
// an immediate transaction.
package sqlitekv

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/oshokin/owner-guard/internal/repository/kv"
)

// Store is a kv.Store over a pool of SQLite connections.
type Store struct {
	// pool hands out connections, one per operation.
	pool *sqlitex.Pool
	// path is the database location, kept for error messages.
	path string
}

var _ kv.Store = (*Store)(nil)

// defaultPoolSize bounds concurrent readers; SQLite serializes writers anyway.
const defaultPoolSize = 4

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY NOT NULL,
	value BLOB NOT NULL
) WITHOUT ROWID;`

// pragmas are applied to every connection before first use.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// Open creates or opens the database at path. Use ":memory:" only in tests;
// the pool is shrunk to one connection so every caller sees the same database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlitekv: path is required")
	}

	poolSize := defaultPoolSize
	if path == ":memory:" {
		poolSize = 1
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: open %s: %w", path, err)
	}

	return &Store{
		pool: pool,
		path: path,
	}, nil
}

// Load returns the value stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := kv.ValidateKey(key); err != nil {
		return nil, err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: take: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		value []byte
		found bool
	)

	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true

			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: load %s: %w", key, err)
	}

	if !found {
		return nil, kv.ErrNotFound
	}

	return value, nil
}

// Save upserts value under key in a single immediate transaction.
func (s *Store) Save(ctx context.Context, key string, value []byte) (err error) {
	if err = kv.ValidateKey(key); err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlitekv: take: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitekv: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{
			Args: []any{key, value},
		})
	if err != nil {
		return fmt.Errorf("sqlitekv: save %s: %w", key, err)
	}

	return nil
}

// Keys returns all stored keys in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: take: %w", err)
	}
	defer s.pool.Put(conn)

	var keys []string

	err = sqlitex.Execute(conn, "SELECT key FROM kv ORDER BY key", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			keys = append(keys, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: list keys: %w", err)
	}

	return keys, nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("sqlitekv: close %s: %w", s.path, err)
	}

	return nil
}

// prepareConn applies pragmas and creates the schema on a fresh connection.
func prepareConn(conn *sqlite.Conn) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitekv: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("sqlitekv: create schema: %w", err)
	}

	return nil
}
