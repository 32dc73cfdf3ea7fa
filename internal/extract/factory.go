package extract

import (
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/resilience"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
)

// NewProvider builds the named provider from configuration.
func NewProvider(name string, cfg *config.Config) (Provider, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	switch name {
	case "ollama":
		return NewOllama(cfg.Ollama.BaseURL, timeout), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI.BaseURL, cfg.OpenAI.Key, timeout), nil
	case "anthropic":
		client := anthropic.NewClient(cfg.Anthropic.Key, option.WithRequestTimeout(timeout))
		return NewAnthropic(client, anthropic.Pricing{
			InputPerMTok:  cfg.Anthropic.InputPrice,
			OutputPerMTok: cfg.Anthropic.OutputPrice,
		}), nil
	default:
		return nil, eris.Errorf("extract: unknown provider %q", name)
	}
}

// FromConfig builds a Client over llm.provider followed by llm.fallbacks.
func FromConfig(cfg *config.Config) (*Client, error) {
	breakers := resilience.NewServiceBreakers(resilience.ProviderBreakerConfig(3, time.Minute,
		func(name string, from, to resilience.CircuitState) {
			zap.L().Warn("extract: provider circuit changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	))

	var bindings []Binding
	for _, name := range cfg.LLM.Providers() {
		p, err := NewProvider(name, cfg)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Provider: p, Model: cfg.ModelFor(name)})
	}

	return NewClient(Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	}, breakers, bindings...), nil
}
