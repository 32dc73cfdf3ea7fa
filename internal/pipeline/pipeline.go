// Package pipeline drives organizations through search, evidence collection,
// extraction, reconciliation and column normalization.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/evidence"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/internal/search"
	"github.com/sells-group/enrich-cli/internal/taxonomy"
)

// evidenceLimit caps the joined evidence text fed to the heuristics.
const evidenceLimit = 8000

// Collector gathers evidence pages. *evidence.Gatherer implements it.
type Collector interface {
	Collect(ctx context.Context, website string) *model.Evidence
	CollectFromHits(ctx context.Context, hits []model.SearchHit) *model.Evidence
}

// Extractor requests a structured record from a language model.
// *extract.Client implements it.
type Extractor interface {
	Extract(ctx context.Context, org model.Organization, ev *model.Evidence) (*model.ExtractionRecord, error)
}

// Processor enriches a single organization.
type Processor interface {
	Process(ctx context.Context, org model.Organization) Outcome
}

// Outcome is the result of processing one row. Err is set only for hard
// failures; collaborator failures degrade inside Process.
type Outcome struct {
	Index        int
	Org          model.Organization
	Record       *model.ExtractionRecord
	Row          model.NormalizedRow
	Website      string
	PagesScraped int
	Duration     time.Duration
	Err          error
}

// OK reports whether the row produced a record.
func (o Outcome) OK() bool { return o.Err == nil && o.Record != nil }

// Pipeline enriches one organization at a time.
type Pipeline struct {
	searcher   search.Searcher
	collector  Collector
	extractor  Extractor
	classifier *taxonomy.Classifier
	reconciler *reconcile.Reconciler
	outCols    config.OutputColumns
	maxResults int
}

// New creates a Pipeline. searcher may be nil, which disables website
// discovery. A nil classifier uses the embedded keyword tables.
func New(cfg *config.Config, searcher search.Searcher, collector Collector, extractor Extractor, cls *taxonomy.Classifier) *Pipeline {
	if cls == nil {
		cls = taxonomy.Default()
	}
	return &Pipeline{
		searcher:   searcher,
		collector:  collector,
		extractor:  extractor,
		classifier: cls,
		reconciler: reconcile.New(cls),
		outCols:    cfg.Excel.OutCols,
		maxResults: cfg.Search.MaxResults,
	}
}

// Process runs one organization through the full enrichment sequence. It
// never fails because a collaborator failed: search degrades to no hits,
// page fetches to empty text, and extraction to the heuristic record.
func (p *Pipeline) Process(ctx context.Context, org model.Organization) Outcome {
	start := time.Now()
	log := zap.L().With(zap.String("org", org.Name))

	var hits []model.SearchHit
	if strings.TrimSpace(org.Website) == "" {
		hits = search.SafeSearch(ctx, p.searcher, org.SearchQuery(), p.maxResults)
	}

	website := evidence.ResolveWebsite(org.Website, hits)
	p.logWebsite(log, website, hits)
	resolved := org.WithWebsite(website)

	ev := model.NewEvidence()
	if website != "" {
		ev = p.collector.Collect(ctx, website)
	}
	if ev.Len() == 0 && len(hits) > 0 {
		ev = p.collector.CollectFromHits(ctx, hits)
	}
	text := ev.Joined(evidenceLimit)

	heuristic := p.classifier.ClassifyHeuristically(org.Name, text)
	inferred := p.classifier.InferSectors(text)

	llmStart := time.Now()
	rec, err := p.extractor.Extract(ctx, resolved, ev)
	if err != nil {
		log.Warn("pipeline: extraction failed, using heuristic record",
			zap.String("heuristic", heuristic),
			zap.Error(err),
		)
		rec = model.HeuristicRecord(resolved, heuristic)
	} else {
		log.Info("pipeline: extracted",
			zap.String("website", website),
			zap.Int("pages", ev.Len()),
			zap.Duration("llm_latency", time.Since(llmStart)),
		)
	}
	fillCurrency(rec, text)

	clean := p.reconciler.Sanitize(resolved, rec, heuristic, inferred)
	out := Outcome{
		Org:          resolved,
		Record:       clean,
		Row:          reconcile.NormalizeToColumns(clean, p.outCols),
		Website:      website,
		PagesScraped: ev.Len(),
		Duration:     time.Since(start),
	}
	if err := ctx.Err(); err != nil {
		out.Err = err
	}
	return out
}

func (p *Pipeline) logWebsite(log *zap.Logger, website string, hits []model.SearchHit) {
	if website == "" {
		log.Info("pipeline: no official website found, using search fallbacks")
		return
	}
	if h, ok := evidence.MatchingHit(website, hits); ok && h.Title != "" {
		log.Debug("pipeline: website chosen",
			zap.String("title", h.Title),
			zap.String("website", website),
		)
		return
	}
	log.Debug("pipeline: website chosen", zap.String("website", website))
}

// fillCurrency sets a missing ticket currency from the evidence text when
// the record carries a ticket amount. The reconciler clears it again for
// non-VC classifications.
func fillCurrency(rec *model.ExtractionRecord, text string) {
	if rec.TicketSizeCurrency != nil && *rec.TicketSizeCurrency != "" {
		return
	}
	if rec.TicketSizeUSDMin == nil && rec.TicketSizeUSDMax == nil {
		return
	}
	if code := taxonomy.CurrencyInText(text); code != "" {
		rec.TicketSizeCurrency = &code
	}
}
