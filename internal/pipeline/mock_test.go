package pipeline

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/model"
)

// --- Collector Mock ---

type mockCollector struct {
	mock.Mock
}

func (m *mockCollector) Collect(ctx context.Context, website string) *model.Evidence {
	args := m.Called(ctx, website)
	ev, _ := args.Get(0).(*model.Evidence)
	return ev
}

func (m *mockCollector) CollectFromHits(ctx context.Context, hits []model.SearchHit) *model.Evidence {
	args := m.Called(ctx, hits)
	ev, _ := args.Get(0).(*model.Evidence)
	return ev
}

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, org model.Organization, ev *model.Evidence) (*model.ExtractionRecord, error) {
	args := m.Called(ctx, org, ev)
	rec, _ := args.Get(0).(*model.ExtractionRecord)
	return rec, args.Error(1)
}

// --- Run recorder ---

type memRecorder struct {
	mu       sync.Mutex
	created  []int
	complete map[string]*model.ExtractionRecord
	failed   map[string]string
	nextID   int
}

func newMemRecorder() *memRecorder {
	return &memRecorder{
		complete: make(map[string]*model.ExtractionRecord),
		failed:   make(map[string]string),
	}
}

func (r *memRecorder) CreateRun(_ context.Context, rowIndex int, org model.Organization) (*model.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.created = append(r.created, rowIndex)
	return &model.Run{ID: runID(r.nextID), RowIndex: rowIndex, Organization: org}, nil
}

func (r *memRecorder) CompleteRun(_ context.Context, id string, rec *model.ExtractionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete[id] = rec
	return nil
}

func (r *memRecorder) FailRun(_ context.Context, id string, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = msg
	return nil
}

func runID(n int) string {
	return "run-" + string(rune('a'+n-1))
}

// processorFunc adapts a function to Processor.
type processorFunc func(ctx context.Context, org model.Organization) Outcome

func (f processorFunc) Process(ctx context.Context, org model.Organization) Outcome {
	return f(ctx, org)
}

func testConfig() *config.Config {
	return &config.Config{
		Excel: config.ExcelConfig{
			Sheet:      "Investors",
			NameCol:    "Name",
			CountryCol: "Country",
			WebsiteCol: "Favorite URL",
			OutCols: config.OutputColumns{
				FundingClassification: "Funding Classification",
				Sector:                "Sector",
				TicketSizeVC:          "Ticket Size (VC)",
				AngelType:             "Angel Type",
				Note:                  "Additional Info",
			},
		},
		Search:     config.SearchConfig{MaxResults: 6},
		Checkpoint: config.CheckpointConfig{Every: 10},
	}
}
