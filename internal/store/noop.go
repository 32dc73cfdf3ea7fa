package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/enrich-cli/internal/model"
)

// NoopStore discards everything. It backs the "none" driver.
type NoopStore struct{}

// NewNoop returns a store that records nothing.
func NewNoop() *NoopStore { return &NoopStore{} }

func (NoopStore) CreateRun(_ context.Context, rowIndex int, org model.Organization) (*model.Run, error) {
	now := time.Now().UTC()
	return &model.Run{
		ID:           uuid.New().String(),
		RowIndex:     rowIndex,
		Organization: org,
		Status:       model.RunStatusRunning,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (NoopStore) CompleteRun(context.Context, string, *model.ExtractionRecord) error { return nil }
func (NoopStore) FailRun(context.Context, string, string) error                       { return nil }

func (NoopStore) GetRun(context.Context, string) (*model.Run, error) { return nil, ErrNotFound }

func (NoopStore) ListRuns(context.Context, RunFilter) ([]model.Run, error) { return nil, nil }

func (NoopStore) LoadEvidence(context.Context, string) (*model.EvidenceCache, error) {
	return nil, nil
}

func (NoopStore) SaveEvidence(context.Context, string, []model.Page, time.Duration) error {
	return nil
}

func (NoopStore) DeleteExpiredEvidence(context.Context) (int, error) { return 0, nil }
func (NoopStore) Migrate(context.Context) error                      { return nil }
func (NoopStore) Close() error                                       { return nil }
