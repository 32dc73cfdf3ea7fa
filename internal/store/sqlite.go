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

	"github.com/sells-group/enrich-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	row_index    INTEGER NOT NULL,
	organization TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	record       TEXT,
	error        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS evidence_cache (
	website    TEXT PRIMARY KEY,
	pages      TEXT NOT NULL,
	crawled_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_evidence_cache_expires_at ON evidence_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, rowIndex int, org model.Organization) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	orgJSON, err := json.Marshal(org)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal organization")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, row_index, organization, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, rowIndex, string(orgJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:           id,
		RowIndex:     rowIndex,
		Organization: org,
		Status:       model.RunStatusRunning,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, rec *model.ExtractionRecord) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET record = ?, status = ?, error = '', updated_at = ? WHERE id = ?`,
		string(recJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

const sqliteRunColumns = `id, row_index, organization, status, record, error, created_at, updated_at`

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + sqliteRunColumns + ` FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, row_index DESC LIMIT ?`
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) LoadEvidence(ctx context.Context, website string) (*model.EvidenceCache, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT website, pages, crawled_at, expires_at FROM evidence_cache
		 WHERE website = ? AND expires_at > ?`,
		website, time.Now().UTC(),
	)

	var ec model.EvidenceCache
	var pagesJSON string
	err := row.Scan(&ec.Website, &pagesJSON, &ec.CrawledAt, &ec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load evidence")
	}
	if err := json.Unmarshal([]byte(pagesJSON), &ec.Pages); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal evidence pages")
	}
	return &ec, nil
}

func (s *SQLiteStore) SaveEvidence(ctx context.Context, website string, pages []model.Page, ttl time.Duration) error {
	now := time.Now().UTC()

	if pages == nil {
		pages = []model.Page{}
	}
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal evidence pages")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evidence_cache (website, pages, crawled_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (website) DO UPDATE SET pages = excluded.pages,
		   crawled_at = excluded.crawled_at, expires_at = excluded.expires_at`,
		website, string(pagesJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: save evidence")
}

func (s *SQLiteStore) DeleteExpiredEvidence(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM evidence_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired evidence")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var orgJSON string
	var recJSON sql.NullString

	err := row.Scan(&r.ID, &r.RowIndex, &orgJSON, &r.Status, &recJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(orgJSON), &r.Organization); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal organization")
	}
	if recJSON.Valid && recJSON.String != "" {
		r.Record = &model.ExtractionRecord{}
		if err := json.Unmarshal([]byte(recJSON.String), r.Record); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
	}
	return &r, nil
}
