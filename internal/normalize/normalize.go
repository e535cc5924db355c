// Package normalize implements the Normaliser/Upserter (C4): one upsert
// path per provider that writes a fetched BoardResponse into the shared
// jobs table, grounded file-for-file on the matching
// upsert_*_jobs_to_d1 function in original_source.
package normalize

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atscrawl/internal/providerapi"
)

// Upserter writes one provider's BoardResponse into storage and reports how
// many postings were persisted.
type Upserter interface {
	Upsert(ctx context.Context, resp providerapi.BoardResponse, token string) (int, error)
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

func companyDisplayName(boardName, token string) string {
	if boardName != "" {
		return boardName
	}
	return titleCaseToken(token)
}

func marshalOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// updateCompanyName refreshes the companies row for token with a resolved
// display name, but only when the existing name is empty or still equal to
// the raw token — never overwriting a name a human (or an earlier, richer
// provider response) already set.
func updateCompanyName(ctx context.Context, tx *sql.Tx, token, name string) error {
	if name == "" {
		_, err := tx.ExecContext(ctx,
			"UPDATE companies SET updated_at=datetime('now') WHERE key=?", token)
		return err
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE companies SET name=?, updated_at=datetime('now')
		WHERE key=? AND (name IS NULL OR name='' OR name=key)`, name, token)
	return err
}

var arborLoggerSink arbor.ILogger // set via SetLogger for skip diagnostics

// SetLogger wires the package-level logger used to report skipped postings
// (missing URL) the way every Upserter's original counterpart logs and
// continues rather than failing the whole batch.
func SetLogger(l arbor.ILogger) { arborLoggerSink = l }

func logSkip(provider, reason, token, id string) {
	if arborLoggerSink == nil {
		return
	}
	arborLoggerSink.Debug().
		Str("provider", provider).
		Str("token", token).
		Str("posting_id", id).
		Msg(reason)
}
