// Package audit records syscall invocations and process lifecycle events
// to PostgreSQL. It is a read-observer: nothing in the kernel's in-memory
// behavior depends on whether Postgres is reachable, and a write failure
// here is logged, never propagated to the caller of a syscall.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store wraps a PostgreSQL connection pool dedicated to the audit trail.
type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// New creates a Store with a pgx connection pool.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: ping postgres: %w", err)
	}
	logger.Info("audit: postgres connected")
	return &Store{db: pool, logger: logger}, nil
}

// Migrate reads and executes every .up.sql file in the migrations directory
// in lexical order.
func (s *Store) Migrate(ctx context.Context, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("audit: read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(migrationsDir, f))
		if err != nil {
			return fmt.Errorf("audit: read migration %s: %w", f, err)
		}
		if _, err := s.db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("audit: exec migration %s: %w", f, err)
		}
		s.logger.Info("audit: migration applied", zap.String("file", f))
	}
	return nil
}

// RecordSyscall appends one row to syscall_log.
func (s *Store) RecordSyscall(ctx context.Context, pid int, name string, ok bool, errno string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO syscall_log (pid, name, ok, errno) VALUES ($1, $2, $3, $4)`,
		pid, name, ok, errno)
	if err != nil {
		return fmt.Errorf("audit: record syscall: %w", err)
	}
	return nil
}

// RecordProcessEvent appends one row to process_events.
func (s *Store) RecordProcessEvent(ctx context.Context, pid, parentPID int, event string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO process_events (pid, parent_pid, event) VALUES ($1, $2, $3)`,
		pid, parentPID, event)
	if err != nil {
		return fmt.Errorf("audit: record process event: %w", err)
	}
	return nil
}

// SyscallCount returns the number of rows logged for pid, for introspection
// and tests.
func (s *Store) SyscallCount(ctx context.Context, pid int) (int, error) {
	row := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM syscall_log WHERE pid = $1`, pid)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("audit: count syscalls for pid %d: %w", pid, err)
	}
	return count, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.db.Close()
}
