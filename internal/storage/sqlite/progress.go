package sqlite

import (
	"context"
	"database/sql"
)

// Progress is the resumable state of one crawl run (spec.md §4.8),
// keyed by a composite "{base_crawl_id}:{provider}" crawl ID.
type Progress struct {
	CrawlID     string
	TotalPages  int
	CurrentPage int
	Status      string
	BoardsFound int
}

// SaveProgress upserts a crawl's cursor position. When status transitions
// to "done" the run's finish time is stamped; any other status leaves it
// alone so repeated in-progress saves don't clobber a prior completion.
func (s *Store) SaveProgress(ctx context.Context, p Progress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_progress (crawl_id, total_pages, current_page, status, boards_found, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(crawl_id) DO UPDATE SET
		  total_pages=excluded.total_pages,
		  current_page=excluded.current_page,
		  status=excluded.status,
		  boards_found=excluded.boards_found,
		  finished_at=CASE WHEN excluded.status='done' THEN datetime('now') ELSE finished_at END,
		  updated_at=datetime('now')`,
		p.CrawlID, p.TotalPages, p.CurrentPage, p.Status, p.BoardsFound,
	)
	return err
}

// GetProgress returns nil, nil when no row exists yet for crawlID — a brand
// new crawl, not an error.
func (s *Store) GetProgress(ctx context.Context, crawlID string) (*Progress, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT total_pages, current_page, status, boards_found FROM crawl_progress WHERE crawl_id = ?",
		crawlID)

	var p Progress
	p.CrawlID = crawlID
	if err := row.Scan(&p.TotalPages, &p.CurrentPage, &p.Status, &p.BoardsFound); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// DeleteProgress clears a crawl's cursor, forcing the next run to restart
// from page 0.
func (s *Store) DeleteProgress(ctx context.Context, crawlID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM crawl_progress WHERE crawl_id = ?", crawlID)
	return err
}
