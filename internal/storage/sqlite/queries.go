package sqlite

import (
	"context"
	"database/sql"
)

// CompanySummary is the read-side projection GET /boards returns; it is
// intentionally narrower than the companies table (no enrichment blobs)
// since it is a listing view, not a detail view.
type CompanySummary struct {
	Key        string
	Name       string
	Website    string
	AtsProvider string
	LastSeenAt string
}

// ListCompanies returns up to limit companies, most recently seen first.
func (s *Store) ListCompanies(ctx context.Context, limit int) ([]CompanySummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT key, COALESCE(name, ''), COALESCE(website, ''), COALESCE(ats_provider, ''), COALESCE(last_seen_capture_timestamp, '')
FROM companies
ORDER BY last_seen_capture_timestamp DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompanySummary
	for rows.Next() {
		var c CompanySummary
		if err := rows.Scan(&c.Key, &c.Name, &c.Website, &c.AtsProvider, &c.LastSeenAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats is the aggregate counter set GET /stats reports.
type Stats struct {
	TotalCompanies int
	TotalJobs      int
	JobsByProvider map[string]int
}

// Stats computes the current row counts used by the monitoring endpoint.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	stats.JobsByProvider = make(map[string]int)

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&stats.TotalCompanies); err != nil {
		return stats, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&stats.TotalJobs); err != nil {
		return stats, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source_kind, COUNT(*) FROM jobs GROUP BY source_kind`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var provider string
		var count int
		if err := rows.Scan(&provider, &count); err != nil {
			return stats, err
		}
		stats.JobsByProvider[provider] = count
	}
	return stats, rows.Err()
}

// ListProgress returns every known cursor, used by GET /progress when no
// crawl_id filter is given.
func (s *Store) ListProgress(ctx context.Context) ([]Progress, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT crawl_id, total_pages, current_page, status, COALESCE(boards_found, 0)
FROM crawl_progress
ORDER BY crawl_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		var p Progress
		if err := rows.Scan(&p.CrawlID, &p.TotalPages, &p.CurrentPage, &p.Status, &p.BoardsFound); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// BoardInfo is the slug/url/timestamp triple the enrichment pipeline needs
// per company; a thin read-side projection so callers of the enrichment
// endpoints don't need to know the companies table's full shape.
type BoardInfo struct {
	Token     string
	URL       string
	Timestamp string
}

// CompanyBoardInfo looks up one company's enrichment inputs by key.
func (s *Store) CompanyBoardInfo(ctx context.Context, key string) (BoardInfo, bool, error) {
	var b BoardInfo
	b.Token = key
	err := s.db.QueryRowContext(ctx, `
SELECT COALESCE(website, ''), COALESCE(last_seen_capture_timestamp, '')
FROM companies WHERE key = ?`, key).Scan(&b.URL, &b.Timestamp)
	if err == sql.ErrNoRows {
		return BoardInfo{}, false, nil
	}
	if err != nil {
		return BoardInfo{}, false, err
	}
	return b, true, nil
}

// CompaniesForEnrichment returns up to limit companies, least-recently
// enriched first (never-enriched companies sort first).
func (s *Store) CompaniesForEnrichment(ctx context.Context, limit int) ([]BoardInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT key, COALESCE(website, ''), COALESCE(last_seen_capture_timestamp, '')
FROM companies
ORDER BY COALESCE(ashby_enriched_at, '') ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BoardInfo
	for rows.Next() {
		var b BoardInfo
		if err := rows.Scan(&b.Token, &b.URL, &b.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
