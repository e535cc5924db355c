package normalize

import (
	"context"
	"database/sql"

	"github.com/ternarybob/atscrawl/internal/providerapi"
)

const leverJobSQL = `
INSERT INTO jobs (
	external_id, source_kind, source_id, company_key, company_name,
	title, url, description, location,
	posted_at,
	categories, workplace_type, country,
	opening, opening_plain,
	description_body, description_body_plain,
	additional, additional_plain,
	lists, ats_created_at, updated_at
) VALUES (
	?, 'lever', ?, ?, ?,
	?, ?, ?, ?,
	COALESCE(?, datetime('now')),
	?, ?, ?,
	?, ?,
	?, ?,
	?, ?,
	?, ?, datetime('now')
)
ON CONFLICT(external_id) DO UPDATE SET
	source_id=excluded.source_id,
	company_key=excluded.company_key,
	company_name=COALESCE(excluded.company_name, company_name),
	title=excluded.title,
	url=excluded.url,
	description=COALESCE(excluded.description, description),
	location=COALESCE(excluded.location, location),
	posted_at=COALESCE(excluded.posted_at, posted_at),
	categories=excluded.categories,
	workplace_type=COALESCE(excluded.workplace_type, workplace_type),
	country=COALESCE(excluded.country, country),
	opening=COALESCE(excluded.opening, opening),
	opening_plain=COALESCE(excluded.opening_plain, opening_plain),
	description_body=COALESCE(excluded.description_body, description_body),
	description_body_plain=COALESCE(excluded.description_body_plain, description_body_plain),
	additional=COALESCE(excluded.additional, additional),
	additional_plain=COALESCE(excluded.additional_plain, additional_plain),
	lists=excluded.lists,
	ats_created_at=excluded.ats_created_at,
	updated_at=datetime('now')`

const leverBoardTrackSQL = `
INSERT INTO lever_boards (site, url, first_seen, last_seen, crawl_id, last_synced_at, job_count, is_active)
VALUES (?, ?, datetime('now'), datetime('now'), 'job-sync', datetime('now'), ?, 1)
ON CONFLICT(site) DO UPDATE SET
  last_synced_at=datetime('now'),
  job_count=?,
  is_active=1,
  updated_at=datetime('now')`

// LeverUpserter writes Lever postings into the shared jobs table, grounded
// on upsert_lever_jobs_to_d1. Lever exposes no board-level company name, so
// the display name is always derived from the site slug.
type LeverUpserter struct{ db *sql.DB }

func NewLeverUpserter(db *sql.DB) *LeverUpserter { return &LeverUpserter{db: db} }

func (u *LeverUpserter) Upsert(ctx context.Context, resp providerapi.BoardResponse, site string) (int, error) {
	companyName := titleCaseToken(site)

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, leverJobSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, p := range resp.Postings {
		if p.ExternalID == "" {
			logSkip("lever", "skipping posting: no hostedUrl", site, p.Title)
			continue
		}

		if _, err := stmt.ExecContext(ctx,
			p.ExternalID, site, site, companyName,
			p.Title, p.ExternalID, nullIfEmpty(p.Description), nullIfEmpty(p.Location),
			nullIfEmpty(p.PostedAt),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["categories"])), nullIfEmpty(toStr(p.RawJSON["workplace_type"])), nullIfEmpty(toStr(p.RawJSON["country"])),
			nullIfEmpty(toStr(p.RawJSON["opening"])), nullIfEmpty(toStr(p.RawJSON["opening_plain"])),
			nullIfEmpty(toStr(p.RawJSON["description_body"])), nullIfEmpty(toStr(p.RawJSON["description_body_plain"])),
			nullIfEmpty(toStr(p.RawJSON["additional"])), nullIfEmpty(toStr(p.RawJSON["additional_plain"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["lists"])), nullIfEmpty(p.PostedAt),
		); err != nil {
			return count, err
		}
		count++
	}

	if _, err := tx.ExecContext(ctx, leverBoardTrackSQL,
		site, "https://jobs.lever.co/"+site, count, count); err != nil {
		return count, err
	}

	if err := updateCompanyName(ctx, tx, site, companyName); err != nil {
		return count, err
	}

	return count, tx.Commit()
}
