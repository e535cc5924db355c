package sqlite

import "fmt"

// baseSchema creates every table in its pre-migration shape. The enrichment
// fields and board-sync bookkeeping columns are intentionally left out here
// and added by runMigrations, so a fresh database and an upgraded one
// converge on the exact same final shape. companies.ats_provider is the one
// migration-era column declared here up front.
const baseSchema = `
CREATE TABLE IF NOT EXISTS companies (
	key                          TEXT PRIMARY KEY,
	name                         TEXT,
	website                      TEXT,
	category                     TEXT NOT NULL DEFAULT 'PRODUCT',
	score                        REAL NOT NULL DEFAULT 0.5,
	last_seen_crawl_id           TEXT,
	last_seen_capture_timestamp  TEXT,
	last_seen_source_url         TEXT,
	ats_provider                 TEXT,
	created_at                   TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at                   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS jobs (
	id                         INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id                TEXT NOT NULL,
	source_kind                TEXT NOT NULL,
	source_id                  TEXT NOT NULL,
	company_key                TEXT NOT NULL REFERENCES companies(key),
	company_name               TEXT,
	title                      TEXT NOT NULL,
	url                        TEXT NOT NULL,
	description                TEXT,
	location                   TEXT,
	country                    TEXT,
	posted_at                  TEXT,
	workplace_type             TEXT,
	categories                 TEXT,
	ats_created_at             TEXT,
	first_published            TEXT,
	-- Ashby-specific columns
	ashby_department           TEXT,
	ashby_team                 TEXT,
	ashby_employment_type      TEXT,
	ashby_is_remote            INTEGER,
	ashby_is_listed            INTEGER,
	ashby_published_at         TEXT,
	ashby_job_url              TEXT,
	ashby_apply_url            TEXT,
	ashby_secondary_locations  TEXT,
	ashby_compensation         TEXT,
	ashby_address              TEXT,
	-- Greenhouse-specific columns
	absolute_url               TEXT,
	internal_job_id            INTEGER,
	requisition_id             TEXT,
	departments                TEXT,
	offices                    TEXT,
	metadata                   TEXT,
	data_compliance            TEXT,
	-- Lever-specific columns
	opening                    TEXT,
	opening_plain              TEXT,
	description_body           TEXT,
	description_body_plain     TEXT,
	additional                 TEXT,
	additional_plain           TEXT,
	lists                      TEXT,
	created_at                 TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at                 TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS ashby_boards (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	slug       TEXT NOT NULL UNIQUE,
	url        TEXT NOT NULL,
	first_seen TEXT NOT NULL DEFAULT (datetime('now')),
	last_seen  TEXT NOT NULL DEFAULT (datetime('now')),
	crawl_id   TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS crawl_progress (
	crawl_id     TEXT PRIMARY KEY,
	total_pages  INTEGER NOT NULL DEFAULT 0,
	current_page INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT 'pending',
	boards_found INTEGER NOT NULL DEFAULT 0,
	started_at   TEXT,
	finished_at  TEXT,
	updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
`

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(baseSchema); err != nil {
		return fmt.Errorf("failed to apply base schema: %w", err)
	}
	return nil
}
