package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/codebook/internal/chunker"
	"github.com/rcliao/codebook/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL,
		label        TEXT,
		fingerprint  TEXT,
		mode         TEXT,
		seed         INTEGER,
		valid        INTEGER,
		errors       INTEGER NOT NULL DEFAULT 0,
		warnings     INTEGER NOT NULL DEFAULT 0,
		tokens       INTEGER NOT NULL DEFAULT 0,
		coverage     REAL,
		slip_count   INTEGER NOT NULL DEFAULT 0,
		text         TEXT NOT NULL DEFAULT '',
		payload      TEXT,
		created_at   TEXT NOT NULL,
		deleted_at   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_deleted ON runs(deleted_at);

	CREATE TABLE IF NOT EXISTS slips (
		id              TEXT PRIMARY KEY,
		run_id          TEXT NOT NULL REFERENCES runs(id),
		line            INTEGER NOT NULL,
		position        INTEGER NOT NULL,
		token           TEXT NOT NULL,
		expected_window INTEGER NOT NULL,
		matched_window  INTEGER NOT NULL,
		adjacency       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_slips_run ON slips(run_id);
	CREATE INDEX IF NOT EXISTS idx_slips_token ON slips(token);

	CREATE TABLE IF NOT EXISTS chunks (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL REFERENCES runs(id),
		seq         INTEGER NOT NULL,
		text        TEXT NOT NULL,
		folio       TEXT,
		start_line  INTEGER,
		end_line    INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_run ON chunks(run_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
		text,
		content=chunks,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers keep the index in sync with chunks
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
	}
	for _, t := range triggers {
		if _, err := s.db.Exec(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Run, error) {
	if !model.ValidKinds[p.Kind] {
		return nil, fmt.Errorf("invalid kind %q (valid: validate, generate, slips)", p.Kind)
	}

	run := &model.Run{
		ID:                 s.newID(),
		Kind:               p.Kind,
		Label:              p.Label,
		LatticeFingerprint: p.LatticeFingerprint,
		Mode:               p.Mode,
		Seed:               p.Seed,
		Valid:              p.Valid,
		Errors:             p.Errors,
		Warnings:           p.Warnings,
		Tokens:             p.Tokens,
		Coverage:           p.Coverage,
		SlipCount:          len(p.Slips),
		Text:               p.Text,
		Payload:            p.Payload,
		Slips:              p.Slips,
		CreatedAt:          time.Now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.insert(ctx, tx, run); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// insert writes run with its slips and text chunks. ChunkCount is set on
// run.
func (s *SQLiteStore) insert(ctx context.Context, tx *sql.Tx, run *model.Run) error {
	var payload *string
	if len(run.Payload) > 0 {
		p := string(run.Payload)
		payload = &p
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, label, fingerprint, mode, seed, valid, errors, warnings, tokens, coverage, slip_count, text, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Label, run.LatticeFingerprint, string(run.Mode), run.Seed, run.Valid,
		run.Errors, run.Warnings, run.Tokens, run.Coverage, len(run.Slips), run.Text, payload,
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	run.SlipCount = len(run.Slips)

	for _, sl := range run.Slips {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO slips (id, run_id, line, position, token, expected_window, matched_window, adjacency)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.newID(), run.ID, sl.Line, sl.Position, sl.Token, sl.ExpectedWindow, sl.MatchedWindow, string(sl.Adjacency))
		if err != nil {
			return fmt.Errorf("insert slip: %w", err)
		}
	}

	chunks := chunker.Chunk(run.Text, chunker.DefaultOptions())
	for i, c := range chunks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chunks (id, run_id, seq, text, folio, start_line, end_line)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.newID(), run.ID, i, c.Text, c.Folio, c.StartLine, c.EndLine)
		if err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	run.ChunkCount = len(chunks)
	return nil
}

const runColumns = `id, kind, label, fingerprint, mode, seed, valid, errors, warnings, tokens,
	coverage, slip_count, text, payload, created_at, deleted_at`

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? AND deleted_at IS NULL`, p.ID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", p.ID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE run_id = ?`, run.ID).Scan(&run.ChunkCount); err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	if p.Slips {
		run.Slips, err = s.SlipsFor(ctx, run.ID)
		if err != nil {
			return nil, err
		}
	}
	return &run, nil
}

// SlipsFor returns the slips recorded for a run in corpus order.
func (s *SQLiteStore) SlipsFor(ctx context.Context, runID string) ([]model.Slip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line, position, token, expected_window, matched_window, adjacency
		 FROM slips WHERE run_id = ? ORDER BY line, position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slips := []model.Slip{}
	for rows.Next() {
		var sl model.Slip
		var adj string
		if err := rows.Scan(&sl.Line, &sl.Position, &sl.Token, &sl.ExpectedWindow, &sl.MatchedWindow, &adj); err != nil {
			return nil, err
		}
		sl.Adjacency = model.Adjacency(adj)
		slips = append(slips, sl)
	}
	return slips, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, p.Kind)
	}
	if p.Label != "" {
		where = append(where, "label = ?")
		args = append(args, p.Label)
	}
	if p.Fingerprint != "" {
		where = append(where, "fingerprint LIKE ?")
		args = append(args, p.Fingerprint+"%")
	}

	query := fmt.Sprintf(`SELECT %s FROM runs WHERE %s ORDER BY created_at DESC, id DESC LIMIT ?`,
		runColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		var id string
		if err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, p.ID).Scan(&id); err != nil {
			return fmt.Errorf("run not found: %s", p.ID)
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for _, q := range []string{
			`DELETE FROM slips WHERE run_id = ?`,
			`DELETE FROM chunks WHERE run_id = ?`,
			`DELETE FROM runs WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		return tx.Commit()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", p.ID)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var label, fingerprint, mode, payload, deletedAt sql.NullString
	var seed sql.NullInt64
	var valid sql.NullBool
	var coverage sql.NullFloat64
	var createdAt string

	err := row.Scan(
		&r.ID, &r.Kind, &label, &fingerprint, &mode, &seed, &valid,
		&r.Errors, &r.Warnings, &r.Tokens, &coverage, &r.SlipCount,
		&r.Text, &payload, &createdAt, &deletedAt,
	)
	if err != nil {
		return r, err
	}

	r.Label = label.String
	r.LatticeFingerprint = fingerprint.String
	r.Mode = model.Mode(mode.String)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if seed.Valid {
		r.Seed = &seed.Int64
	}
	if valid.Valid {
		r.Valid = &valid.Bool
	}
	if coverage.Valid {
		r.Coverage = &coverage.Float64
	}
	if payload.Valid {
		r.Payload = []byte(payload.String)
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		r.DeletedAt = &t
	}
	return r, nil
}
