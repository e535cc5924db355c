// Package sqlite implements the persistence layer (C7): connection setup,
// schema/migrations, and the Store used by the normaliser and orchestrator.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atscrawl/internal/common"
	"maragu.dev/goqite"
	_ "modernc.org/sqlite"
)

// Store wraps the database connection used by every component that reads
// or writes job/board/progress state.
type Store struct {
	db     *sql.DB
	logger arbor.ILogger
	config *common.SQLiteConfig
	retryQ *goqite.Queue
}

// New opens the database, applies pragmas, initialises the goqite retry
// queue schema, and runs pending migrations.
func New(logger arbor.ILogger, config *common.SQLiteConfig) (*Store, error) {
	dir := filepath.Dir(config.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if config.ResetOnStartup {
		if config.Environment != "development" {
			logger.Warn().
				Str("environment", config.Environment).
				Msg("reset_on_startup is enabled but environment is not 'development' - ignoring reset request for safety")
		} else if err := resetDatabase(logger, config.Path); err != nil {
			return nil, fmt.Errorf("failed to reset database: %w", err)
		}
	}

	logger.Debug().Str("path", config.Path).Msg("opening database connection")

	// modernc.org/sqlite registers the driver under the name "sqlite", not "sqlite3".
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite tolerates at most one writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent callers instead of relying on retry loops.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger, config: config}

	if err := goqite.Setup(context.Background(), db); err != nil {
		if strings.Contains(err.Error(), "table goqite already exists") {
			logger.Debug().Msg("goqite queue schema already present")
		} else {
			db.Close()
			return nil, fmt.Errorf("failed to initialize goqite schema: %w", err)
		}
	}

	if err := s.configure(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info().Str("path", config.Path).Msg("sqlite store initialized")
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size = -%d", s.config.CacheSizeMB*1024),
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.config.BusyTimeoutMS),
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	if s.config.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("failed to execute %s: %w", p, err)
		}
	}

	if s.config.WALMode {
		var journalMode string
		if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
			s.logger.Warn().Err(err).Msg("failed to verify journal mode")
		} else {
			s.logger.Info().
				Str("journal_mode", journalMode).
				Int("busy_timeout_ms", s.config.BusyTimeoutMS).
				Int("cache_size_mb", s.config.CacheSizeMB).
				Msg("sqlite configuration applied")
		}
	}
	return nil
}

// DB returns the underlying connection for packages that need raw access
// (e.g. the enrichment engine and the upserters).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func resetDatabase(logger arbor.ILogger, dbPath string) error {
	logger.Warn().Str("path", dbPath).Msg("resetting database (deleting all data)")

	if err := os.Remove(dbPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete database file: %w", err)
		}
	} else {
		logger.Info().Str("path", dbPath).Msg("deleted database file")
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("path", dbPath+suffix).Msg("failed to delete sidecar file")
			}
		}
	}

	return nil
}
