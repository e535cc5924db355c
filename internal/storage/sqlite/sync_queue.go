package sqlite

import (
	"context"
	"fmt"

	"github.com/ternarybob/atscrawl/internal/provider"
)

// trackerTable names, per provider, the table that records when a board was
// last synced against its job API.
var trackerTable = map[provider.Provider]struct {
	table, keyColumn string
}{
	provider.Ashby:      {"ashby_boards", "slug"},
	provider.Greenhouse: {"greenhouse_boards", "token"},
	provider.Workable:   {"workable_boards", "shortcode"},
	provider.Lever:      {"lever_boards", "site"},
}

// UnsyncedCompanyKeys returns up to limit company keys for p that have never
// had their job board synced, ordered by company key, grounded on
// get_company_slugs_by_provider.
func (s *Store) UnsyncedCompanyKeys(ctx context.Context, p provider.Provider, limit int) ([]string, error) {
	t, ok := trackerTable[p]
	if !ok {
		return nil, fmt.Errorf("no tracker table for provider %s", p)
	}

	// Ashby was the original default provider, so legacy rows with no
	// ats_provider tag are treated as Ashby boards too.
	providerFilter := "c.ats_provider = ?"
	if p == provider.Ashby {
		providerFilter = "(c.ats_provider = ? OR c.ats_provider IS NULL)"
	}

	query := fmt.Sprintf(`
		SELECT c.key FROM companies c
		LEFT JOIN %s t ON t.%s = c.key
		WHERE %s
		  AND t.last_synced_at IS NULL
		ORDER BY c.key
		LIMIT ?`, t.table, t.keyColumn, providerFilter)

	rows, err := s.db.QueryContext(ctx, query, p.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
