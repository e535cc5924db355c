package sqlite

import (
	"context"
	"strings"
	"unicode"

	"github.com/ternarybob/atscrawl/internal/archive"
)

const upsertCompanySQL = `
INSERT INTO companies (key, name, website, category, score, last_seen_crawl_id, last_seen_capture_timestamp, last_seen_source_url, ats_provider)
VALUES (?, ?, ?, 'PRODUCT', 0.5, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  name=COALESCE(NULLIF(companies.name,''),excluded.name),
  website=excluded.website,
  last_seen_crawl_id=excluded.last_seen_crawl_id,
  last_seen_capture_timestamp=excluded.last_seen_capture_timestamp,
  last_seen_source_url=excluded.last_seen_source_url,
  ats_provider=COALESCE(excluded.ats_provider, companies.ats_provider),
  updated_at=datetime('now')
WHERE excluded.last_seen_capture_timestamp >= COALESCE(companies.last_seen_capture_timestamp, '')`

// UpsertBoards records freshly discovered boards as companies, keeping the
// most recently captured sighting per key (spec.md §4.3 monotonic-timestamp
// guard). Title-cases the token into a display name, except when the token
// is entirely numeric — a title-cased "103644278" is not a useful name, so
// it's left empty and the COALESCE in the SQL leaves any existing name
// untouched.
func (s *Store) UpsertBoards(ctx context.Context, boards []archive.DiscoveredBoard) (int, error) {
	if len(boards) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertCompanySQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	saved := 0
	for _, b := range boards {
		name := titleCaseToken(b.Token)
		if allDigits(b.Token) {
			name = ""
		}
		website := b.Provider.BoardURL(b.Token)

		if _, err := stmt.ExecContext(ctx,
			b.Token, name, website, b.CrawlID, b.Timestamp, b.URL, b.Provider.String(),
		); err != nil {
			return saved, err
		}
		saved++
	}

	return saved, tx.Commit()
}

func titleCaseToken(token string) string {
	words := strings.FieldsFunc(token, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
