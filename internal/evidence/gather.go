package evidence

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/scrape"
)

// CommonPaths are the site paths tried after the homepage, in order.
var CommonPaths = []string{
	"/about", "/about-us", "/who-we-are", "/programs", "/programmes",
	"/portfolio", "/investments", "/our-investments", "/companies",
	"/what-we-do", "/strategy",
}

// fallbackHits is how many search hits are fetched when the site gave
// nothing.
const fallbackHits = 2

// Fetcher returns the cleaned text of a page, or "" on any failure.
type Fetcher interface {
	FetchText(ctx context.Context, url string) string
}

// Cache persists collected bundles per website. Load returns nil, nil on a
// miss or an expired entry.
type Cache interface {
	LoadEvidence(ctx context.Context, website string) (*model.EvidenceCache, error)
	SaveEvidence(ctx context.Context, website string, pages []model.Page, ttl time.Duration) error
}

// Config bounds evidence collection.
type Config struct {
	MaxPages int           // pages visited per site
	MaxChars int           // per-page text cap
	Delay    time.Duration // minimum gap between fetches
	CacheTTL time.Duration
	Exclude  *scrape.PathMatcher
}

// Gatherer collects evidence pages for a website.
type Gatherer struct {
	fetcher Fetcher
	cfg     Config
	limiter *rate.Limiter
	cache   Cache
}

// NewGatherer creates a Gatherer. cache may be nil.
func NewGatherer(f Fetcher, cfg Config, cache Cache) *Gatherer {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 6000
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Gatherer{
		fetcher: f,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
	}
}

// CandidateURLs returns the homepage followed by CommonPaths resolved
// against it.
func CandidateURLs(website string) []string {
	out := []string{website}
	base, err := url.Parse(website)
	if err != nil {
		return out
	}
	for _, p := range CommonPaths {
		out = append(out, base.ResolveReference(&url.URL{Path: p}).String())
	}
	return out
}

// Collect visits up to MaxPages candidate URLs of website and returns the
// non-empty page texts in visit order. A fresh cached bundle is returned
// without fetching.
func (g *Gatherer) Collect(ctx context.Context, website string) *model.Evidence {
	if website == "" {
		return model.NewEvidence()
	}
	if ev := g.cached(ctx, website); ev != nil {
		return ev
	}

	ev := model.NewEvidence()
	visited := 0
	for _, u := range CandidateURLs(website) {
		if visited >= g.cfg.MaxPages {
			break
		}
		if g.cfg.Exclude != nil && g.cfg.Exclude.IsExcluded(u) {
			continue
		}
		visited++
		if text := g.fetch(ctx, u); text != "" {
			ev.Add(u, text)
		}
		if ctx.Err() != nil {
			break
		}
	}

	g.store(ctx, website, ev)
	return ev
}

// CollectFromHits fetches the first fallbackHits search results directly,
// skipping social profiles and links that do not normalize.
func (g *Gatherer) CollectFromHits(ctx context.Context, hits []model.SearchHit) *model.Evidence {
	ev := model.NewEvidence()
	if len(hits) > fallbackHits {
		hits = hits[:fallbackHits]
	}
	for _, h := range hits {
		u := NormalizeSearchHref(h.URL())
		if u == "" || IsSocial(u) {
			continue
		}
		if text := g.fetch(ctx, u); text != "" {
			ev.Add(u, text)
		}
	}
	return ev
}

func (g *Gatherer) fetch(ctx context.Context, u string) string {
	if err := g.limiter.Wait(ctx); err != nil {
		return ""
	}
	text := scrape.CleanText(g.fetcher.FetchText(ctx, u))
	return model.Truncate(text, g.cfg.MaxChars)
}

func (g *Gatherer) cached(ctx context.Context, website string) *model.Evidence {
	if g.cache == nil {
		return nil
	}
	entry, err := g.cache.LoadEvidence(ctx, website)
	if err != nil {
		zap.L().Warn("evidence: cache lookup failed",
			zap.String("website", website),
			zap.Error(err),
		)
		return nil
	}
	if entry == nil || len(entry.Pages) == 0 {
		return nil
	}
	zap.L().Debug("evidence: cache hit",
		zap.String("website", website),
		zap.Int("pages", len(entry.Pages)),
	)
	return model.EvidenceFromPages(entry.Pages)
}

func (g *Gatherer) store(ctx context.Context, website string, ev *model.Evidence) {
	if g.cache == nil || ev.Len() == 0 || g.cfg.CacheTTL <= 0 {
		return
	}
	if err := g.cache.SaveEvidence(ctx, website, ev.Pages(), g.cfg.CacheTTL); err != nil {
		zap.L().Warn("evidence: cache save failed",
			zap.String("website", website),
			zap.Error(err),
		)
	}
}
