package extract

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
)

// Binding pairs a provider with the model it is asked for.
type Binding struct {
	Provider Provider
	Model    string
}

// Options holds sampling and timeout settings shared by every provider.
type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client runs extraction against an ordered provider chain.
type Client struct {
	bindings []Binding
	opts     Options
	breakers *resilience.ServiceBreakers
}

// NewClient creates a Client. Providers are tried in the given order; each
// is guarded by its own circuit breaker from breakers (a default registry
// is created when nil).
func NewClient(opts Options, breakers *resilience.ServiceBreakers, bindings ...Binding) *Client {
	if breakers == nil {
		breakers = resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())
	}
	return &Client{bindings: bindings, opts: opts, breakers: breakers}
}

// Providers returns the provider names in try order.
func (c *Client) Providers() []string {
	names := make([]string, len(c.bindings))
	for i, b := range c.bindings {
		names[i] = b.Provider.Name()
	}
	return names
}

// Extract prompts each provider in turn and parses the first answer. Output
// that is not JSON still yields a record (see ParseRecord). The error joins
// every provider's failure when none answers.
func (c *Client) Extract(ctx context.Context, org model.Organization, ev *model.Evidence) (*model.ExtractionRecord, error) {
	if len(c.bindings) == 0 {
		return nil, eris.New("extract: no providers configured")
	}

	prompt := BuildPrompt(Instructions, org, ev)
	var errs []error
	for _, b := range c.bindings {
		name := b.Provider.Name()
		req := CompletionRequest{
			Model:       b.Model,
			Prompt:      prompt,
			MaxTokens:   c.opts.MaxTokens,
			Temperature: c.opts.Temperature,
		}

		start := time.Now()
		raw, err := resilience.ExecuteVal(ctx, c.breakers.Get(name), func(ctx context.Context) (string, error) {
			if c.opts.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
				defer cancel()
			}
			return b.Provider.Complete(ctx, req)
		})
		if err != nil {
			zap.L().Warn("extract: provider failed",
				zap.String("provider", name),
				zap.String("org", org.Name),
				zap.Bool("transient", resilience.IsTransient(err)),
				zap.Error(err),
			)
			errs = append(errs, eris.Wrapf(err, "extract: %s", name))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		zap.L().Info("extract: completion received",
			zap.String("provider", name),
			zap.String("model", b.Model),
			zap.String("org", org.Name),
			zap.Duration("latency", time.Since(start)),
			zap.Int("chars", len(raw)),
		)
		return ParseRecord(raw, org), nil
	}
	return nil, errors.Join(errs...)
}
