package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migration is a named, idempotent DDL/DML batch. Unlike a conventional
// versioned migration, each statement inside SQL runs independently and a
// failing statement (e.g. "duplicate column name" from an ALTER TABLE ADD
// COLUMN re-run against a database that already has it) does not abort the
// batch or roll back the ones before it. This mirrors how the original
// system could run its migrations repeatedly against a database it didn't
// fully control the history of, rather than the strict one-shot
// all-or-nothing transaction the rest of this codebase's migration style
// would normally use.
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "0002_enrichment",
		sql: `
			ALTER TABLE ashby_boards ADD COLUMN company_name  TEXT;
			ALTER TABLE ashby_boards ADD COLUMN industry_tags TEXT;
			ALTER TABLE ashby_boards ADD COLUMN tech_signals  TEXT;
			ALTER TABLE ashby_boards ADD COLUMN enriched_at   TEXT;
			CREATE INDEX IF NOT EXISTS idx_boards_company  ON ashby_boards(company_name);
			CREATE INDEX IF NOT EXISTS idx_boards_industry ON ashby_boards(industry_tags);
		`,
	},
	{
		name: "0005_companies_ashby_enrichment",
		sql: `
			ALTER TABLE companies ADD COLUMN ashby_industry_tags TEXT;
			ALTER TABLE companies ADD COLUMN ashby_tech_signals  TEXT;
			ALTER TABLE companies ADD COLUMN ashby_size_signal   TEXT;
			ALTER TABLE companies ADD COLUMN ashby_enriched_at   TEXT;
		`,
	},
	{
		name: "0003_jobs_external_id_unique",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_external_id ON jobs(external_id);`,
	},
	{
		name: "0004_ashby_boards_sync",
		sql: `
			ALTER TABLE ashby_boards ADD COLUMN last_synced_at TEXT;
			ALTER TABLE ashby_boards ADD COLUMN job_count      INTEGER;
			ALTER TABLE ashby_boards ADD COLUMN is_active      INTEGER DEFAULT 1;
		`,
	},
	{
		name: "0006_dedup_and_unique_external_id",
		sql: `
			DELETE FROM jobs WHERE id NOT IN (SELECT MIN(id) FROM jobs GROUP BY external_id);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_external_id ON jobs(external_id);
		`,
	},
	{
		name: "0007_greenhouse_boards",
		sql: `
			CREATE TABLE IF NOT EXISTS greenhouse_boards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				token TEXT NOT NULL UNIQUE,
				url TEXT NOT NULL,
				first_seen TEXT NOT NULL DEFAULT (datetime('now')),
				last_seen TEXT NOT NULL DEFAULT (datetime('now')),
				crawl_id TEXT,
				last_synced_at TEXT,
				job_count INTEGER,
				is_active INTEGER DEFAULT 1,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX IF NOT EXISTS idx_gh_boards_token ON greenhouse_boards(token);
		`,
	},
	{
		name: "0008_gh_external_id_to_url",
		sql: `
			UPDATE jobs
			   SET external_id = absolute_url,
			       updated_at  = datetime('now')
			 WHERE external_id LIKE 'gh-%'
			   AND source_kind = 'greenhouse'
			   AND absolute_url IS NOT NULL
			   AND absolute_url != ''
			   AND absolute_url NOT IN (SELECT external_id FROM jobs WHERE external_id NOT LIKE 'gh-%');
		`,
	},
	{
		name: "0009_workable_boards",
		sql: `
			CREATE TABLE IF NOT EXISTS workable_boards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				shortcode TEXT NOT NULL UNIQUE,
				url TEXT NOT NULL,
				first_seen TEXT NOT NULL DEFAULT (datetime('now')),
				last_seen TEXT NOT NULL DEFAULT (datetime('now')),
				crawl_id TEXT,
				last_synced_at TEXT,
				job_count INTEGER,
				is_active INTEGER DEFAULT 1,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX IF NOT EXISTS idx_wb_boards_shortcode ON workable_boards(shortcode);
		`,
	},
	{
		name: "0010_strip_querystring_from_external_id",
		sql: `
			DELETE FROM jobs WHERE id NOT IN (
			  SELECT MIN(id) FROM jobs
			  WHERE external_id LIKE '%?%' AND source_kind = 'greenhouse'
			  GROUP BY SUBSTR(external_id, 1, INSTR(external_id, '?') - 1)
			) AND external_id LIKE '%?%' AND source_kind = 'greenhouse';
			UPDATE jobs
			   SET external_id = SUBSTR(external_id, 1, INSTR(external_id, '?') - 1),
			       updated_at  = datetime('now')
			 WHERE external_id LIKE '%?%'
			   AND source_kind = 'greenhouse';
		`,
	},
	{
		// lever_boards never made it into the original migration list even
		// though the Lever upsert path already wrote to it — an
		// out-of-sync original that this port corrects rather than repeats.
		name: "0011_lever_boards",
		sql: `
			CREATE TABLE IF NOT EXISTS lever_boards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				site TEXT NOT NULL UNIQUE,
				url TEXT NOT NULL,
				first_seen TEXT NOT NULL DEFAULT (datetime('now')),
				last_seen TEXT NOT NULL DEFAULT (datetime('now')),
				crawl_id TEXT,
				last_synced_at TEXT,
				job_count INTEGER,
				is_active INTEGER DEFAULT 1,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX IF NOT EXISTS idx_lever_boards_site ON lever_boards(site);
		`,
	},
}

func (s *Store) runMigrations(ctx context.Context) error {
	if err := s.createMigrationsTable(ctx); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := s.migrationApplied(ctx, m.name)
		if err != nil {
			return fmt.Errorf("checking migration %s: %w", m.name, err)
		}
		if applied {
			continue
		}

		s.runMigrationStatements(ctx, m)

		if _, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO _migrations (name) VALUES (?)", m.name); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.name, err)
		}

		s.logger.Info().Str("migration", m.name).Msg("applied migration")
	}

	return nil
}

func (s *Store) createMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			name       TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`)
	return err
}

func (s *Store) migrationApplied(ctx context.Context, name string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// runMigrationStatements executes each semicolon-delimited statement
// independently, logging but not failing on a statement error — this is
// what makes ALTER TABLE ADD COLUMN safe to leave in a migration that might
// run again against a database some of whose statements already landed.
func (s *Store) runMigrationStatements(ctx context.Context, m migration) {
	for i, stmt := range strings.Split(m.sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Warn().
				Str("migration", m.name).
				Int("statement_index", i).
				Err(err).
				Msg("migration statement failed, continuing")
		}
	}
}
