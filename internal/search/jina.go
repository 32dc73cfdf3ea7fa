package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/jina"
)

// Jina searches through the Jina AI Search API.
type Jina struct {
	client jina.Client
}

// NewJina creates a Jina searcher from a Jina client.
func NewJina(client jina.Client) *Jina {
	return &Jina{client: client}
}

// Search maps Jina results to hits. Jina reports "no results" as 422, which
// the client turns into an empty response.
func (j *Jina) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	resp, err := j.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "jina search")
	}

	hits := make([]model.SearchHit, 0, len(resp.Data))
	for _, r := range resp.Data {
		if r.URL == "" {
			continue
		}
		hits = append(hits, model.SearchHit{Title: r.Title, Link: r.URL})
	}
	return capHits(hits, maxResults), nil
}
