package normalize

import (
	"context"
	"database/sql"

	"github.com/ternarybob/atscrawl/internal/providerapi"
)

const ashbyJobSQL = `
INSERT INTO jobs (
	external_id, source_kind, source_id, company_key, company_name,
	title, url, description, location,
	posted_at,
	workplace_type,
	ashby_department, ashby_team, ashby_employment_type,
	ashby_is_remote, ashby_is_listed, ashby_published_at,
	ashby_job_url, ashby_apply_url,
	ashby_secondary_locations, ashby_compensation, ashby_address,
	categories, ats_created_at, first_published, updated_at
) VALUES (
	?, 'ashby', ?, ?, ?,
	?, ?, ?, ?,
	COALESCE(?, datetime('now')),
	?,
	?, ?, ?,
	?, ?, ?,
	?, ?,
	?, ?, ?,
	?, ?, ?, datetime('now')
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
	workplace_type=COALESCE(excluded.workplace_type, workplace_type),
	ashby_department=excluded.ashby_department,
	ashby_team=excluded.ashby_team,
	ashby_employment_type=excluded.ashby_employment_type,
	ashby_is_remote=excluded.ashby_is_remote,
	ashby_is_listed=excluded.ashby_is_listed,
	ashby_published_at=excluded.ashby_published_at,
	ashby_job_url=excluded.ashby_job_url,
	ashby_apply_url=excluded.ashby_apply_url,
	ashby_secondary_locations=excluded.ashby_secondary_locations,
	ashby_compensation=excluded.ashby_compensation,
	ashby_address=excluded.ashby_address,
	categories=excluded.categories,
	ats_created_at=excluded.ats_created_at,
	first_published=COALESCE(excluded.first_published, first_published),
	updated_at=datetime('now')`

const ashbyBoardTrackSQL = `
INSERT INTO ashby_boards (slug, url, first_seen, last_seen, crawl_id, last_synced_at, job_count, is_active)
VALUES (?, ?, datetime('now'), datetime('now'), 'job-sync', datetime('now'), ?, 1)
ON CONFLICT(slug) DO UPDATE SET
  last_synced_at=datetime('now'),
  job_count=?,
  is_active=1,
  updated_at=datetime('now')`

// AshbyUpserter writes Ashby postings into the shared jobs table, grounded
// on upsert_ashby_jobs_to_d1.
type AshbyUpserter struct{ db *sql.DB }

func NewAshbyUpserter(db *sql.DB) *AshbyUpserter { return &AshbyUpserter{db: db} }

func (u *AshbyUpserter) Upsert(ctx context.Context, resp providerapi.BoardResponse, slug string) (int, error) {
	companyName := companyDisplayName(resp.CompanyName, slug)

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, ashbyJobSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, p := range resp.Postings {
		if p.ExternalID == "" {
			logSkip("ashby", "skipping posting: no url", slug, toStr(p.RawJSON["id"]))
			continue
		}

		workplaceType := ""
		if p.IsRemote != nil {
			if *p.IsRemote {
				workplaceType = "remote"
			} else {
				workplaceType = "office"
			}
		}

		// posted_at, ashby_published_at, ats_created_at and first_published
		// are all bound to p.PostedAt, so first_published holds the
		// posting's publishedAt, not the time this system first stored it.
		if _, err := stmt.ExecContext(ctx,
			p.ExternalID, slug, slug, companyName,
			p.Title, p.ExternalID, nullIfEmpty(p.Description), nullIfEmpty(p.Location),
			nullIfEmpty(p.PostedAt),
			nullIfEmpty(workplaceType),
			nullIfEmpty(toStr(p.RawJSON["department"])), nullIfEmpty(toStr(p.RawJSON["team"])), nullIfEmpty(toStr(p.RawJSON["employment_type"])),
			p.IsRemote, toBoolPtr(p.RawJSON["is_listed"]), nullIfEmpty(p.PostedAt),
			nullIfEmpty(toStr(p.RawJSON["job_url"])), nullIfEmpty(toStr(p.RawJSON["apply_url"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["secondary_locations"])), nullIfEmpty(marshalOrEmpty(p.RawJSON["compensation"])), nullIfEmpty(marshalOrEmpty(p.RawJSON["address"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON)), nullIfEmpty(p.PostedAt), nullIfEmpty(p.PostedAt),
		); err != nil {
			return count, err
		}
		count++
	}

	if _, err := tx.ExecContext(ctx, ashbyBoardTrackSQL,
		slug, "https://jobs.ashbyhq.com/"+slug, count, count); err != nil {
		return count, err
	}

	if err := updateCompanyName(ctx, tx, slug, ""); err != nil {
		return count, err
	}

	return count, tx.Commit()
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}

func toBoolPtr(v any) any {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return b
}
