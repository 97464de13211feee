package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteValues stores session values in a local SQLite file
type SQLiteValues struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and creates if needed) the session database at path
func OpenSQLite(path string) (*SQLiteValues, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	s := &SQLiteValues{db: db, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteValues) init() error {
	query := `
		CREATE TABLE IF NOT EXISTS session_values (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_session_values_expires ON session_values (expires_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to initialize session database: %w", err)
	}
	return nil
}

func (s *SQLiteValues) Get(ctx context.Context, sid string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM session_values WHERE session_id = ? AND expires_at > ?`,
		sid, s.now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", sid, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *SQLiteValues) Put(ctx context.Context, sid string, values map[string]string, ttl time.Duration) error {
	expires := s.now().Add(ttl).Unix()
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, sid); err != nil {
			return err
		}
		for k, v := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_values (session_id, name, value, expires_at) VALUES (?, ?, ?, ?)`,
				sid, k, v, expires); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteValues) Delete(ctx context.Context, sid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, sid)
	return err
}

// Purge removes expired rows and returns how many were dropped
func (s *SQLiteValues) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteValues) Close() error {
	return s.db.Close()
}

// withTransaction commits when fn succeeds and rolls back otherwise
func (s *SQLiteValues) withTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
