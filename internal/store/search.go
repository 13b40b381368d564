package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/codebook/internal/model"
)

// SearchParams holds parameters for searching run text.
type SearchParams struct {
	Query string
	Kind  string
	Limit int
}

// SearchResult wraps a run with the first chunk that matched.
type SearchResult struct {
	model.Run
	MatchChunk *model.Chunk `json:"match_chunk,omitempty"`
}

// Search finds runs whose text contains every token of the query. Tokens
// are matched whole, so "daiin" does not match "qodaiin".
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	match := ftsQuery(p.Query)
	if match == "" {
		return nil, fmt.Errorf("empty search query")
	}

	where := []string{"chunks_fts MATCH ?", "r.deleted_at IS NULL"}
	args := []interface{}{match}
	if p.Kind != "" {
		where = append(where, "r.kind = ?")
		args = append(args, p.Kind)
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.kind, r.label, r.fingerprint, r.mode, r.seed, r.valid, r.errors, r.warnings, r.tokens,
		       r.coverage, r.slip_count, r.text, r.payload, r.created_at, r.deleted_at,
		       c.id, c.seq, c.text, c.folio, c.start_line, c.end_line
		FROM chunks_fts
		INNER JOIN chunks c ON c.rowid = chunks_fts.rowid
		INNER JOIN runs r ON r.id = c.run_id
		WHERE %s
		ORDER BY r.created_at DESC, r.id DESC, c.seq`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	seen := map[string]bool{}
	for rows.Next() {
		var sr SearchResult
		var c model.Chunk
		var folio *string
		var start, end *int
		cols := runScanner{dest: []interface{}{&c.ID, &c.Seq, &c.Text, &folio, &start, &end}, row: rows}
		sr.Run, err = scanRun(&cols)
		if err != nil {
			return nil, err
		}
		if seen[sr.ID] || len(results) >= limit {
			continue
		}
		seen[sr.ID] = true
		c.RunID = sr.ID
		if folio != nil {
			c.Folio = *folio
		}
		if start != nil {
			c.StartLine = *start
		}
		if end != nil {
			c.EndLine = *end
		}
		sr.MatchChunk = &c
		results = append(results, sr)
	}
	return results, rows.Err()
}

// runScanner appends extra destinations after the run columns so a joined
// row can be read with scanRun.
type runScanner struct {
	row  scanner
	dest []interface{}
}

func (r *runScanner) Scan(dest ...interface{}) error {
	return r.row.Scan(append(dest, r.dest...)...)
}

// ftsQuery turns free text into an FTS5 query of quoted terms, so markup
// and FTS operators in the input are matched literally.
func ftsQuery(q string) string {
	var terms []string
	for _, f := range strings.Fields(q) {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
