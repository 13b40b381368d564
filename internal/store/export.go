package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/codebook/internal/model"
)

// ExportAll returns all non-deleted runs with their slips, optionally
// filtered by kind.
func (s *SQLiteStore) ExportAll(ctx context.Context, kind string) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	var args []interface{}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	rows.Close()

	for i := range runs {
		if runs[i].SlipCount == 0 {
			continue
		}
		if runs[i].Slips, err = s.SlipsFor(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Import stores runs from an export, keeping their ids and timestamps.
// Runs whose id already exists are skipped. Returns the number imported.
func (s *SQLiteStore) Import(ctx context.Context, runs []model.Run) (int, error) {
	imported := 0
	for _, r := range runs {
		if !model.ValidKinds[r.Kind] {
			return imported, fmt.Errorf("import run %s: invalid kind %q", r.ID, r.Kind)
		}
		if r.ID == "" {
			r.ID = s.newID()
		} else {
			var n int
			if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, r.ID).Scan(&n); err != nil {
				return imported, fmt.Errorf("import run %s: %w", r.ID, err)
			}
			if n > 0 {
				continue
			}
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Second)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return imported, err
		}
		if err := s.insert(ctx, tx, &r); err != nil {
			tx.Rollback()
			return imported, fmt.Errorf("import run %s: %w", r.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
