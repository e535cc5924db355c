package normalize

import (
	"context"
	"database/sql"

	"github.com/ternarybob/atscrawl/internal/providerapi"
)

const workableJobSQL = `
INSERT INTO jobs (
	external_id, source_kind, source_id, company_key, company_name,
	title, url, location, country,
	posted_at,
	categories, workplace_type,
	departments, ats_created_at, updated_at
) VALUES (
	?, 'workable', ?, ?, ?,
	?, ?, ?, ?,
	COALESCE(?, datetime('now')),
	?, ?,
	?, ?, datetime('now')
)
ON CONFLICT(external_id) DO UPDATE SET
	source_id=excluded.source_id,
	company_key=excluded.company_key,
	company_name=COALESCE(excluded.company_name, company_name),
	title=excluded.title,
	url=excluded.url,
	location=COALESCE(excluded.location, location),
	country=COALESCE(excluded.country, country),
	posted_at=COALESCE(excluded.posted_at, posted_at),
	categories=excluded.categories,
	workplace_type=COALESCE(excluded.workplace_type, workplace_type),
	departments=excluded.departments,
	ats_created_at=excluded.ats_created_at,
	updated_at=datetime('now')`

const workableBoardTrackSQL = `
INSERT INTO workable_boards (shortcode, url, first_seen, last_seen, crawl_id, last_synced_at, job_count, is_active)
VALUES (?, ?, datetime('now'), datetime('now'), 'job-sync', datetime('now'), ?, 1)
ON CONFLICT(shortcode) DO UPDATE SET
  last_synced_at=datetime('now'),
  job_count=?,
  is_active=1,
  updated_at=datetime('now')`

// WorkableUpserter writes Workable postings into the shared jobs table,
// grounded on upsert_workable_jobs_to_d1.
type WorkableUpserter struct{ db *sql.DB }

func NewWorkableUpserter(db *sql.DB) *WorkableUpserter { return &WorkableUpserter{db: db} }

func (u *WorkableUpserter) Upsert(ctx context.Context, resp providerapi.BoardResponse, shortcode string) (int, error) {
	companyName := companyDisplayName(resp.CompanyName, shortcode)

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, workableJobSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, p := range resp.Postings {
		if p.ExternalID == "" {
			logSkip("workable", "skipping posting: no url", shortcode, p.Title)
			continue
		}

		if _, err := stmt.ExecContext(ctx,
			p.ExternalID, shortcode, shortcode, companyName,
			p.Title, p.ExternalID, nullIfEmpty(p.Location), nullIfEmpty(toStr(p.RawJSON["country"])),
			nullIfEmpty(p.PostedAt),
			nullIfEmpty(toStr(p.RawJSON["categories"])), nullIfEmpty(toStr(p.RawJSON["workplace_type"])),
			nullIfEmpty(toStr(p.RawJSON["categories"])), nullIfEmpty(p.PostedAt),
		); err != nil {
			return count, err
		}
		count++
	}

	if _, err := tx.ExecContext(ctx, workableBoardTrackSQL,
		shortcode, "https://apply.workable.com/"+shortcode, count, count); err != nil {
		return count, err
	}

	if err := updateCompanyName(ctx, tx, shortcode, companyName); err != nil {
		return count, err
	}

	return count, tx.Commit()
}
