package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Concurrent workflows write records; a single connection serializes
	// them and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	sources      TEXT NOT NULL DEFAULT '[]',
	status       TEXT NOT NULL DEFAULT 'running',
	summary      TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS records (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	run_id        TEXT NOT NULL REFERENCES runs(id),
	name          TEXT NOT NULL,
	website       TEXT NOT NULL,
	category      TEXT NOT NULL,
	contact_email TEXT NOT NULL DEFAULT '',
	pain_points   TEXT NOT NULL DEFAULT '',
	source_url    TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL,
	status        TEXT NOT NULL,
	status_detail TEXT NOT NULL DEFAULT '',
	review        TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
`

// Migrate creates the ledger tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, sources []string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	if sources == nil {
		sources = []string{}
	}

	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal sources")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, sources, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(sourcesJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Sources:   sources,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, summary model.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, summary = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		string(status), string(summaryJSON), now, now, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, sources, status, summary, created_at, updated_at, completed_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, sources, status, summary, created_at, updated_at, completed_at FROM runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	args = append(args, listLimit(filter), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, runID string, rec model.CompanyRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, run_id, name, website, category, contact_email, pain_points,
			source_url, state, status, status_detail, review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, runID, rec.Name, rec.Website, string(rec.Category), rec.ContactEmail, rec.PainPoints,
		rec.SourceURL, string(rec.State), string(rec.Status), rec.StatusDetail, string(rec.Review),
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save record %s", rec.Name)
}

func (s *SQLiteStore) ListRecords(ctx context.Context, runID string) ([]model.CompanyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, website, category, contact_email, pain_points, source_url,
			state, status, status_detail, review
		FROM records WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CompanyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list records")
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row scannable) (*model.Run, error) {
	var (
		r           model.Run
		sourcesJSON string
		summaryJSON sql.NullString
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &sourcesJSON, &status, &summaryJSON, &r.CreatedAt, &r.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	if err := decodeRunJSON(&r, []byte(sourcesJSON), []byte(summaryJSON.String)); err != nil {
		return nil, err
	}
	return &r, nil
}

// decodeRunJSON fills the JSON-encoded columns shared by both SQL drivers.
func decodeRunJSON(r *model.Run, sources, summary []byte) error {
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &r.Sources); err != nil {
			return eris.Wrap(err, "store: unmarshal sources")
		}
	}
	if len(summary) > 0 {
		var s model.Summary
		if err := json.Unmarshal(summary, &s); err != nil {
			return eris.Wrap(err, "store: unmarshal summary")
		}
		r.Summary = &s
	}
	return nil
}

func scanRecord(row scannable) (model.CompanyRecord, error) {
	var (
		rec                                      model.CompanyRecord
		category, state, status, review, detail string
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Website, &category, &rec.ContactEmail, &rec.PainPoints,
		&rec.SourceURL, &state, &status, &detail, &review)
	if err != nil {
		return rec, err
	}
	rec.Category = model.Category(category)
	rec.State = model.WorkflowState(state)
	rec.Status = model.RecordStatus(status)
	rec.StatusDetail = detail
	rec.Review = model.ReviewOutcome(review)
	return rec, nil
}
