// Package enrich implements the rule-based Enrichment Engine (C6): a
// fixed Pipeline of named steps that derives industry/tech/size signals
// for a company from its board slug and discovery metadata, grounded on
// original_source/.../rig_compat.rs and enrichment.rs.
package enrich

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ternarybob/arbor"
)

// Board is the subset of discovery output the pipeline needs per company.
type Board struct {
	Token     string
	URL       string
	Timestamp string
}

const updateSQL = `
UPDATE companies
SET ashby_industry_tags=?, ashby_tech_signals=?, ashby_size_signal=?, ashby_enriched_at=datetime('now')
WHERE key=?`

// Engine runs the enrichment pipeline over a batch of boards and persists
// the resulting tags, grounded on auto_enrich_boards.
type Engine struct {
	db     *sql.DB
	logger arbor.ILogger
	pipe   *Pipeline
}

func NewEngine(db *sql.DB, logger arbor.ILogger) *Engine {
	return &Engine{db: db, logger: logger, pipe: BuildPipeline()}
}

// EnrichBoards runs every board through the pipeline and writes the
// surviving results in one transaction. A board whose pipeline run fails at
// any step is logged and skipped, not treated as a batch failure.
func (e *Engine) EnrichBoards(ctx context.Context, boards []Board) (int, error) {
	if len(boards) == 0 {
		return 0, nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, updateSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	saved := 0
	for _, b := range boards {
		r := &record{Slug: b.Token, URL: b.URL, LastSeen: b.Timestamp}
		if err := e.pipe.run(r); err != nil {
			e.logger.Debug().Str("token", b.Token).Err(err).Msg("enrichment failed, skipping")
			continue
		}

		industryJSON, _ := json.Marshal(r.Industries)
		techJSON, _ := json.Marshal(r.TechSignals)

		if _, err := stmt.ExecContext(ctx, string(industryJSON), string(techJSON), r.SizeSignal, b.Token); err != nil {
			return saved, err
		}
		saved++
	}

	return saved, tx.Commit()
}
