package evidence

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/scrape"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return f.pages[url]
}

type memCache struct {
	entry   *model.EvidenceCache
	loadErr error
	saved   []model.Page
	ttl     time.Duration
}

func (c *memCache) LoadEvidence(_ context.Context, _ string) (*model.EvidenceCache, error) {
	return c.entry, c.loadErr
}

func (c *memCache) SaveEvidence(_ context.Context, website string, pages []model.Page, ttl time.Duration) error {
	c.saved = pages
	c.ttl = ttl
	c.entry = &model.EvidenceCache{Website: website, Pages: pages}
	return nil
}

func TestCandidateURLs(t *testing.T) {
	t.Parallel()

	got := CandidateURLs("https://acme.org/en/home")
	require.Len(t, got, 1+len(CommonPaths))
	assert.Equal(t, "https://acme.org/en/home", got[0])
	assert.Equal(t, "https://acme.org/about", got[1])
	assert.Equal(t, "https://acme.org/strategy", got[len(got)-1])
}

func TestCollect_VisitsFirstPagesInOrder(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		"https://acme.org":          "Acme   home",
		"https://acme.org/about-us": "About Acme",
		"https://acme.org/strategy": "never visited",
	}}
	g := NewGatherer(f, Config{MaxPages: 5, MaxChars: 6000}, nil)

	ev := g.Collect(context.Background(), "https://acme.org")

	assert.Equal(t, []string{
		"https://acme.org",
		"https://acme.org/about",
		"https://acme.org/about-us",
		"https://acme.org/who-we-are",
		"https://acme.org/programs",
	}, f.calls)
	assert.Equal(t, []string{"https://acme.org", "https://acme.org/about-us"}, ev.URLs())
	assert.Equal(t, "Acme home", ev.Pages()[0].Text)
}

func TestCollect_TruncatesPages(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		"https://acme.org": strings.Repeat("a", 100),
	}}
	g := NewGatherer(f, Config{MaxPages: 1, MaxChars: 10}, nil)

	ev := g.Collect(context.Background(), "https://acme.org")
	require.Equal(t, 1, ev.Len())
	assert.Len(t, ev.Pages()[0].Text, 10)
}

func TestCollect_SkipsExcludedPaths(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{}}
	g := NewGatherer(f, Config{
		MaxPages: 3,
		Exclude:  scrape.NewPathMatcher([]string{"/about*"}),
	}, nil)

	g.Collect(context.Background(), "https://acme.org")
	assert.Equal(t, []string{
		"https://acme.org",
		"https://acme.org/who-we-are",
		"https://acme.org/programs",
	}, f.calls)
}

func TestCollect_EmptyWebsite(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	ev := NewGatherer(f, Config{}, nil).Collect(context.Background(), "")
	assert.Equal(t, 0, ev.Len())
	assert.Empty(t, f.calls)
}

func TestCollect_UsesCache(t *testing.T) {
	t.Parallel()

	cache := &memCache{}
	f := &fakeFetcher{pages: map[string]string{"https://acme.org": "Acme"}}
	g := NewGatherer(f, Config{MaxPages: 1, CacheTTL: time.Hour}, cache)

	first := g.Collect(context.Background(), "https://acme.org")
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, time.Hour, cache.ttl)
	require.Len(t, cache.saved, 1)

	second := g.Collect(context.Background(), "https://acme.org")
	assert.Equal(t, first.Pages(), second.Pages())
	assert.Len(t, f.calls, 1, "second collect served from cache")
}

func TestCollect_CacheErrorFallsThrough(t *testing.T) {
	t.Parallel()

	cache := &memCache{loadErr: eris.New("db down")}
	f := &fakeFetcher{pages: map[string]string{"https://acme.org": "Acme"}}
	g := NewGatherer(f, Config{MaxPages: 1}, cache)

	ev := g.Collect(context.Background(), "https://acme.org")
	assert.Equal(t, 1, ev.Len())
	assert.Nil(t, cache.saved, "zero TTL disables saving")
}

func TestCollectFromHits(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		"https://acme-fund.org/": "Acme invests in startups",
		"https://third.org":      "never fetched",
	}}
	g := NewGatherer(f, Config{}, nil)

	hits := []model.SearchHit{
		{Href: "https://duckduckgo.com/l/?uddg=https%3A%2F%2Facme-fund.org%2F"},
		{Href: "https://www.linkedin.com/company/acme"},
		{Href: "https://third.org"},
	}
	ev := g.CollectFromHits(context.Background(), hits)

	assert.Equal(t, []string{"https://acme-fund.org/"}, ev.URLs())
	assert.Equal(t, []string{"https://acme-fund.org/"}, f.calls)
}

func TestCollect_RespectsCancelledContext(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{"https://acme.org": "Acme"}}
	g := NewGatherer(f, Config{MaxPages: 5, Delay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := g.Collect(ctx, "https://acme.org")
	assert.Equal(t, 0, ev.Len())
}

func TestCollect_TruncatesPagesByCharacter(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{
		"https://acme.org": strings.Repeat("صندوق", 10),
	}}
	g := NewGatherer(f, Config{MaxPages: 1, MaxChars: 12}, nil)

	ev := g.Collect(context.Background(), "https://acme.org")
	require.Equal(t, 1, ev.Len())
	assert.Equal(t, "صندوقصندوقصن", ev.Pages()[0].Text)
}
