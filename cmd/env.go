package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/evidence"
	"github.com/sells-group/enrich-cli/internal/extract"
	"github.com/sells-group/enrich-cli/internal/pipeline"
	"github.com/sells-group/enrich-cli/internal/scrape"
	"github.com/sells-group/enrich-cli/internal/search"
	"github.com/sells-group/enrich-cli/internal/store"
	"github.com/sells-group/enrich-cli/internal/taxonomy"
	"github.com/sells-group/enrich-cli/pkg/jina"
)

// pipelineEnv holds the initialized store and pipeline used by the enrich
// and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates configuration for mode, opens the store and builds
// the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	cls, err := initClassifier()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	extractor, err := extract.FromConfig(cfg)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "init extractor")
	}

	jinaClient := initJina()
	gatherer := evidence.NewGatherer(initFetcher(jinaClient), evidence.Config{
		MaxPages: cfg.Limits.MaxPagesPerSite,
		MaxChars: cfg.Scrape.MaxChars,
		Delay:    seconds(cfg.Network.SleepBetweenRequestsSec),
		CacheTTL: time.Duration(cfg.Scrape.CacheTTLHours) * time.Hour,
		Exclude:  scrape.NewPathMatcher(cfg.Scrape.ExcludePaths),
	}, st)

	zap.L().Info("pipeline initialized",
		zap.Strings("providers", extractor.Providers()),
		zap.String("search", cfg.Search.Provider),
		zap.String("store", cfg.Store.Driver),
	)

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, initSearcher(jinaClient), gatherer, extractor, cls),
	}, nil
}

// initClassifier loads the keyword tables, preferring taxonomy.path.
func initClassifier() (*taxonomy.Classifier, error) {
	if cfg.Taxonomy.Path == "" {
		return taxonomy.Default(), nil
	}
	tables, err := taxonomy.LoadTablesFile(cfg.Taxonomy.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load taxonomy tables")
	}
	return taxonomy.NewClassifier(tables), nil
}

func initJina() jina.Client {
	if cfg.Jina.Key == "" {
		return nil
	}
	opts := []jina.Option{jina.WithBaseURL(cfg.Jina.BaseURL)}
	if cfg.Jina.SearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
	}
	return jina.NewClient(cfg.Jina.Key, opts...)
}

// initFetcher builds the page-fetch chain: the goquery extractor first,
// readability second, and the Jina reader last when a key is configured.
func initFetcher(jinaClient jina.Client) *scrape.Chain {
	opts := scrape.HTTPOptions{
		UserAgent: cfg.Network.UserAgent,
		Timeout:   time.Duration(cfg.Network.TimeoutSecs) * time.Second,
	}
	scrapers := []scrape.Scraper{
		scrape.NewLocalScraper(opts),
		scrape.NewReadabilityScraper(opts),
	}
	if jinaClient != nil {
		scrapers = append(scrapers, scrape.NewJinaAdapter(jinaClient))
	}
	return scrape.NewChain(scrape.NewPathMatcher(cfg.Scrape.ExcludePaths), scrapers...)
}

// initSearcher builds the configured search provider wrapped in the fixed
// retry policy.
func initSearcher(jinaClient jina.Client) search.Searcher {
	var s search.Searcher
	switch strings.ToLower(cfg.Search.Provider) {
	case "jina":
		if jinaClient == nil {
			return nil
		}
		s = search.NewJina(jinaClient)
	default:
		s = search.NewDuckDuckGo(cfg.Search.BaseURL, cfg.Network.UserAgent,
			time.Duration(cfg.Network.TimeoutSecs)*time.Second)
	}
	return search.WithRetry(s, cfg.Search.Attempts, time.Duration(cfg.Search.WaitSecs)*time.Second)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
