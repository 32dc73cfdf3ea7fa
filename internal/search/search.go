// Package search finds candidate websites for an organization through a web
// search provider.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
)

// Searcher runs a web search and returns at most maxResults hits.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	return f(ctx, query, maxResults)
}

type retrying struct {
	next Searcher
	cfg  resilience.RetryConfig
}

// WithRetry wraps s so that every error is retried, making up to attempts
// calls with a fixed wait between them.
func WithRetry(s Searcher, attempts int, wait time.Duration) Searcher {
	cfg := resilience.FixedRetryConfig(attempts, wait)
	cfg.OnRetry = resilience.RetryLogger("search", "query")
	return &retrying{next: s, cfg: cfg}
}

func (r *retrying) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	return resilience.DoVal(ctx, r.cfg, func(ctx context.Context) ([]model.SearchHit, error) {
		return r.next.Search(ctx, query, maxResults)
	})
}

// SafeSearch runs s and tolerates total failure: on error it logs a warning
// and returns no hits.
func SafeSearch(ctx context.Context, s Searcher, query string, maxResults int) []model.SearchHit {
	if s == nil || query == "" {
		return nil
	}
	hits, err := s.Search(ctx, query, maxResults)
	if err != nil {
		zap.L().Warn("search: failed, continuing without results",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}
	return hits
}

func capHits(hits []model.SearchHit, maxResults int) []model.SearchHit {
	if maxResults > 0 && len(hits) > maxResults {
		return hits[:maxResults]
	}
	return hits
}
