//go:build !integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/pipeline"
	"github.com/sells-group/enrich-cli/internal/store"
)

type processorFunc func(ctx context.Context, org model.Organization) pipeline.Outcome

func (f processorFunc) Process(ctx context.Context, org model.Organization) pipeline.Outcome {
	return f(ctx, org)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func okProcessor() pipeline.Processor {
	return processorFunc(func(_ context.Context, org model.Organization) pipeline.Outcome {
		rec := &model.ExtractionRecord{
			Name:                  org.Name,
			FundingClassification: model.ClassVentureCapital,
			Sectors:               []string{"Fintech"},
			Confidence:            0.8,
		}
		return pipeline.Outcome{
			Org:          org,
			Record:       rec,
			Website:      "https://acme.vc",
			PagesScraped: 2,
			Row:          model.NormalizedRow{"Funding Classification": model.Str(model.ClassVentureCapital)},
		}
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBuildRouter_Health(t *testing.T) {
	h := buildRouter(okProcessor(), store.NewNoop())

	rr := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_EnrichRecordsRun(t *testing.T) {
	st := newTestStore(t)
	h := buildRouter(okProcessor(), st)

	rr := doJSON(t, h, http.MethodPost, "/enrich", enrichRequest{Name: "Acme Ventures", Country: "Jordan"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp enrichResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "https://acme.vc", resp.Website)
	assert.Equal(t, 2, resp.Pages)
	require.NotNil(t, resp.Record)
	assert.Equal(t, model.ClassVentureCapital, resp.Record.FundingClassification)
	require.NotEmpty(t, resp.RunID)

	rr = doJSON(t, h, http.MethodGet, "/runs/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var run model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "Acme Ventures", run.Organization.Name)
	assert.Equal(t, -1, run.RowIndex)
}

func TestBuildRouter_EnrichFailureRecordsError(t *testing.T) {
	st := newTestStore(t)
	failing := processorFunc(func(_ context.Context, org model.Organization) pipeline.Outcome {
		return pipeline.Outcome{Org: org, Err: errors.New("boom")}
	})
	h := buildRouter(failing, st)

	rr := doJSON(t, h, http.MethodPost, "/enrich", enrichRequest{Name: "Broken Co"})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "boom")

	rr = doJSON(t, h, http.MethodGet, "/runs?status=failed", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Error)
}

func TestBuildRouter_EnrichBadRequests(t *testing.T) {
	h := buildRouter(okProcessor(), store.NewNoop())

	req := httptest.NewRequest(http.MethodPost, "/enrich", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/enrich", enrichRequest{Country: "Jordan"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "name is required")
}

func TestBuildRouter_RunsEmptyAndNotFound(t *testing.T) {
	h := buildRouter(okProcessor(), store.NewNoop())

	rr := doJSON(t, h, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	rr = doJSON(t, h, http.MethodGet, "/runs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/runs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = doJSON(t, h, http.MethodGet, "/runs?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	h := buildRouter(okProcessor(), store.NewNoop())

	req := httptest.NewRequest(http.MethodOptions, "/enrich", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
