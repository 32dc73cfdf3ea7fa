package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/db"
	"github.com/sells-group/enrich-cli/internal/model"
)

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	row_index    INTEGER NOT NULL,
	organization JSONB NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	record       JSONB,
	error        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS evidence_cache (
	website    TEXT PRIMARY KEY,
	pages      JSONB NOT NULL,
	crawled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_evidence_cache_expires_at ON evidence_cache(expires_at);
`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, rowIndex int, org model.Organization) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	orgJSON, err := json.Marshal(org)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal organization")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, row_index, organization, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, rowIndex, orgJSON, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, rec *model.ExtractionRecord) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET record = $1, status = $2, error = '', updated_at = $3 WHERE id = $4`,
		recJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

const postgresRunColumns = `id, row_index, organization, status, record, error, created_at, updated_at`

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresRunColumns+` FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + postgresRunColumns + ` FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, row_index DESC LIMIT $%d`, argIdx)
	args = append(args, filter.limit())
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var orgJSON []byte
	var recJSON *[]byte
	var status string

	if err := row.Scan(&r.ID, &r.RowIndex, &orgJSON, &status, &recJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)

	if err := json.Unmarshal(orgJSON, &r.Organization); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal organization")
	}
	if recJSON != nil && len(*recJSON) > 0 {
		r.Record = &model.ExtractionRecord{}
		if err := json.Unmarshal(*recJSON, r.Record); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
	}
	return &r, nil
}

func (s *PostgresStore) LoadEvidence(ctx context.Context, website string) (*model.EvidenceCache, error) {
	var ec model.EvidenceCache
	var pagesJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT website, pages, crawled_at, expires_at FROM evidence_cache
		 WHERE website = $1 AND expires_at > now()`,
		website,
	).Scan(&ec.Website, &pagesJSON, &ec.CrawledAt, &ec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load evidence")
	}
	if err := json.Unmarshal(pagesJSON, &ec.Pages); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal evidence pages")
	}
	return &ec, nil
}

func (s *PostgresStore) SaveEvidence(ctx context.Context, website string, pages []model.Page, ttl time.Duration) error {
	now := time.Now().UTC()

	if pages == nil {
		pages = []model.Page{}
	}
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal evidence pages")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO evidence_cache (website, pages, crawled_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (website) DO UPDATE SET pages = EXCLUDED.pages,
		   crawled_at = EXCLUDED.crawled_at, expires_at = EXCLUDED.expires_at`,
		website, pagesJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: save evidence")
}

func (s *PostgresStore) DeleteExpiredEvidence(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM evidence_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired evidence")
	}
	return int(tag.RowsAffected()), nil
}
