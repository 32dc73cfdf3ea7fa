package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

var knownProviders = map[string]bool{
	"ollama":    true,
	"openai":    true,
	"anthropic": true,
}

// Validate checks the settings a command mode depends on. Mode is one of
// "enrich" or "serve"; all problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	switch mode {
	case "enrich", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Excel.NameCol == "" {
		add("excel.name_col is required")
	}
	for _, col := range c.Excel.OutCols.Names() {
		if col == "" {
			add("excel.out_cols entries must be non-empty")
			break
		}
	}
	if c.Limits.MaxPagesPerSite < 1 {
		add("limits.max_pages_per_site must be >= 1")
	}
	if c.Network.TimeoutSecs < 1 {
		add("network.timeout_secs must be >= 1")
	}
	if c.Network.SleepBetweenRequestsSec < 0 || c.Network.SleepBetweenRowsSec < 0 {
		add("network sleep values must be >= 0")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		add("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 1 {
		add("llm.max_tokens must be >= 1")
	}

	providers := c.LLM.Providers()
	if len(providers) == 0 {
		add("llm.provider is required")
	}
	for _, p := range providers {
		if !knownProviders[p] {
			add("llm provider " + p + " is not supported")
			continue
		}
		if p == "openai" && c.OpenAI.Key == "" {
			add("openai.key is required for the openai provider")
		}
		if p == "anthropic" && c.Anthropic.Key == "" {
			add("anthropic.key is required for the anthropic provider")
		}
	}

	switch c.Search.Provider {
	case "duckduckgo":
	case "jina":
		if c.Jina.Key == "" {
			add("jina.key is required for the jina search provider")
		}
	default:
		add("search.provider must be duckduckgo or jina")
	}

	switch c.Store.Driver {
	case "none":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			add("store.database_url is required")
		}
	default:
		add("store.driver must be sqlite, postgres or none")
	}

	if mode == "serve" && c.Server.Port <= 0 {
		add("server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
