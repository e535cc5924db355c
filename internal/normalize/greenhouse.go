package normalize

import (
	"context"
	"database/sql"

	"github.com/ternarybob/atscrawl/internal/providerapi"
)

const greenhouseJobSQL = `
INSERT INTO jobs (
	external_id, source_kind, source_id, company_key, company_name,
	title, url, description, location,
	posted_at,
	absolute_url, internal_job_id, requisition_id,
	departments, offices, metadata, data_compliance,
	ats_created_at, updated_at
) VALUES (
	?, 'greenhouse', ?, ?, ?,
	?, ?, ?, ?,
	COALESCE(?, datetime('now')),
	?, ?, ?,
	?, ?, ?, ?,
	?, datetime('now')
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
	absolute_url=COALESCE(excluded.absolute_url, absolute_url),
	internal_job_id=COALESCE(excluded.internal_job_id, internal_job_id),
	requisition_id=COALESCE(excluded.requisition_id, requisition_id),
	departments=excluded.departments,
	offices=excluded.offices,
	metadata=excluded.metadata,
	data_compliance=excluded.data_compliance,
	ats_created_at=excluded.ats_created_at,
	updated_at=datetime('now')`

const greenhouseBoardTrackSQL = `
INSERT INTO greenhouse_boards (token, url, first_seen, last_seen, crawl_id, last_synced_at, job_count, is_active)
VALUES (?, ?, datetime('now'), datetime('now'), 'job-sync', datetime('now'), ?, 1)
ON CONFLICT(token) DO UPDATE SET
  last_synced_at=datetime('now'),
  job_count=?,
  is_active=1,
  updated_at=datetime('now')`

// GreenhouseUpserter writes Greenhouse postings into the shared jobs table,
// grounded on upsert_greenhouse_jobs_to_d1.
type GreenhouseUpserter struct{ db *sql.DB }

func NewGreenhouseUpserter(db *sql.DB) *GreenhouseUpserter { return &GreenhouseUpserter{db: db} }

func (u *GreenhouseUpserter) Upsert(ctx context.Context, resp providerapi.BoardResponse, token string) (int, error) {
	companyName := companyDisplayName(resp.CompanyName, token)

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, greenhouseJobSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, p := range resp.Postings {
		if p.ExternalID == "" {
			logSkip("greenhouse", "skipping posting: no url", token, p.Title)
			continue
		}

		var internalJobID any
		if v, ok := p.RawJSON["internal_job_id"]; ok {
			internalJobID = v
		}

		if _, err := stmt.ExecContext(ctx,
			p.ExternalID, token, token, companyName,
			p.Title, toStr(p.RawJSON["absolute_url"]), nullIfEmpty(p.Description), nullIfEmpty(p.Location),
			nullIfEmpty(p.PostedAt),
			toStr(p.RawJSON["absolute_url"]), internalJobID, nullIfEmpty(toStr(p.RawJSON["requisition_id"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["departments"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["offices"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["metadata"])),
			nullIfEmpty(marshalOrEmpty(p.RawJSON["data_compliance"])),
			nullIfEmpty(p.PostedAt),
		); err != nil {
			return count, err
		}
		count++
	}

	if _, err := tx.ExecContext(ctx, greenhouseBoardTrackSQL,
		token, "https://job-boards.greenhouse.io/"+token, count, count); err != nil {
		return count, err
	}

	if err := updateCompanyName(ctx, tx, token, companyName); err != nil {
		return count, err
	}

	return count, tx.Commit()
}
