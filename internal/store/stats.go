package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string         `json:"db_path"`
	DBSizeBytes int64          `json:"db_size_bytes"`
	TotalRuns   int            `json:"total_runs"`
	ActiveRuns  int            `json:"active_runs"`
	TotalSlips  int            `json:"total_slips"`
	TotalChunks int            `json:"total_chunks"`
	Kinds       []KindStats    `json:"kinds"`
	Lattices    []LatticeStats `json:"lattices"`
	TopSlips    []SlipTally    `json:"top_slips"`
}

// KindStats holds per-kind counts. Valid counts runs recorded as valid.
type KindStats struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Valid int    `json:"valid"`
}

// LatticeStats counts runs per lattice fingerprint.
type LatticeStats struct {
	Fingerprint string `json:"fingerprint"`
	Runs        int    `json:"runs"`
}

// SlipTally counts how often a token slipped with a given adjacency.
type SlipTally struct {
	Token     string `json:"token"`
	Adjacency string `json:"adjacency"`
	Count     int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.TotalRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE deleted_at IS NULL`).Scan(&st.ActiveRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slips`).Scan(&st.TotalSlips)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&st.TotalChunks)

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) AS cnt, COALESCE(SUM(valid), 0)
		FROM runs WHERE deleted_at IS NULL
		GROUP BY kind ORDER BY cnt DESC, kind`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var k KindStats
		rows.Scan(&k.Kind, &k.Count, &k.Valid)
		st.Kinds = append(st.Kinds, k)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT fingerprint, COUNT(*) AS cnt
		FROM runs WHERE deleted_at IS NULL AND fingerprint IS NOT NULL AND fingerprint != ''
		GROUP BY fingerprint ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var l LatticeStats
		rows.Scan(&l.Fingerprint, &l.Runs)
		st.Lattices = append(st.Lattices, l)
	}
	rows.Close()

	st.TopSlips, err = s.TopSlips(ctx, 10)
	return st, err
}

// TopSlips returns the most frequently slipping tokens across live runs.
func (s *SQLiteStore) TopSlips(ctx context.Context, limit int) ([]SlipTally, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.token, s.adjacency, COUNT(*) AS cnt
		FROM slips s INNER JOIN runs r ON r.id = s.run_id
		WHERE r.deleted_at IS NULL
		GROUP BY s.token, s.adjacency
		ORDER BY cnt DESC, s.token, s.adjacency
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tallies []SlipTally
	for rows.Next() {
		var t SlipTally
		if err := rows.Scan(&t.Token, &t.Adjacency, &t.Count); err != nil {
			return nil, err
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}
