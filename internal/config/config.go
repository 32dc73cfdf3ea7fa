package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Excel      ExcelConfig      `yaml:"excel" mapstructure:"excel"`
	Limits     LimitsConfig     `yaml:"limits" mapstructure:"limits"`
	Network    NetworkConfig    `yaml:"network" mapstructure:"network"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Ollama     OllamaConfig     `yaml:"ollama" mapstructure:"ollama"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy" mapstructure:"taxonomy"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ExcelConfig names the workbook sheet and the input/output columns.
type ExcelConfig struct {
	Sheet      string        `yaml:"sheet" mapstructure:"sheet"`
	NameCol    string        `yaml:"name_col" mapstructure:"name_col"`
	CountryCol string        `yaml:"country_col" mapstructure:"country_col"`
	WebsiteCol string        `yaml:"website_col" mapstructure:"website_col"`
	OutCols    OutputColumns `yaml:"out_cols" mapstructure:"out_cols"`
}

// InputColumns returns the configured name, country and website columns.
func (e ExcelConfig) InputColumns() InputColumns {
	return InputColumns{Name: e.NameCol, Country: e.CountryCol, Website: e.WebsiteCol}
}

// InputColumns names the columns an Organization is read from.
type InputColumns struct {
	Name    string
	Country string
	Website string
}

// OutputColumns names the columns enrichment results are written to.
type OutputColumns struct {
	FundingClassification string `yaml:"funding_classification" mapstructure:"funding_classification"`
	Sector                string `yaml:"sector" mapstructure:"sector"`
	TicketSizeVC          string `yaml:"ticket_size_vc" mapstructure:"ticket_size_vc"`
	AngelType             string `yaml:"angel_type" mapstructure:"angel_type"`
	Note                  string `yaml:"note" mapstructure:"note"`
}

// Names returns the output column names in write order.
func (o OutputColumns) Names() []string {
	return []string{o.FundingClassification, o.Sector, o.TicketSizeVC, o.AngelType, o.Note}
}

// LimitsConfig bounds the crawl per organization.
type LimitsConfig struct {
	MaxPagesPerSite int `yaml:"max_pages_per_site" mapstructure:"max_pages_per_site"`
}

// NetworkConfig configures outbound HTTP politeness.
type NetworkConfig struct {
	UserAgent               string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs             int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SleepBetweenRequestsSec float64 `yaml:"sleep_between_requests_sec" mapstructure:"sleep_between_requests_sec"`
	SleepBetweenRowsSec     float64 `yaml:"sleep_between_rows_sec" mapstructure:"sleep_between_rows_sec"`
}

// SearchConfig configures the web search collaborator.
type SearchConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
	Attempts   int    `yaml:"attempts" mapstructure:"attempts"`
	WaitSecs   int    `yaml:"wait_secs" mapstructure:"wait_secs"`
}

// ScrapeConfig configures page fetching and the evidence cache.
type ScrapeConfig struct {
	ExcludePaths  []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
	CacheTTLHours int      `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	MaxChars      int      `yaml:"max_chars" mapstructure:"max_chars"`
}

// LLMConfig selects the completion provider chain and sampling settings.
type LLMConfig struct {
	Provider    string   `yaml:"provider" mapstructure:"provider"`
	Fallbacks   []string `yaml:"fallbacks" mapstructure:"fallbacks"`
	Model       string   `yaml:"model" mapstructure:"model"`
	MaxTokens   int      `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64  `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Providers returns the primary provider followed by the fallbacks, without
// duplicates.
func (l LLMConfig) Providers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range append([]string{l.Provider}, l.Fallbacks...) {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// OllamaConfig holds the local Ollama endpoint.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OpenAIConfig holds OpenAI-compatible chat API settings. Model overrides
// llm.model when set.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings. Model overrides llm.model
// when set. Prices are USD per million tokens for the configured model and
// only feed the logged cost estimate.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	InputPrice  float64 `yaml:"input_price_per_mtok" mapstructure:"input_price_per_mtok"`
	OutputPrice float64 `yaml:"output_price_per_mtok" mapstructure:"output_price_per_mtok"`
}

// ModelFor returns the model name used with provider.
func (c *Config) ModelFor(provider string) string {
	switch provider {
	case "openai":
		if c.OpenAI.Model != "" {
			return c.OpenAI.Model
		}
	case "anthropic":
		if c.Anthropic.Model != "" {
			return c.Anthropic.Model
		}
	}
	return c.LLM.Model
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// TaxonomyConfig optionally overrides the embedded keyword tables.
type TaxonomyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// CheckpointConfig controls how often progress is flushed to disk.
type CheckpointConfig struct {
	Every int `yaml:"every" mapstructure:"every"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. When path is empty,
// config.yaml in the working directory is used if present; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("excel.sheet", "Sheet1")
	v.SetDefault("excel.name_col", "Name")
	v.SetDefault("excel.country_col", "Country")
	v.SetDefault("excel.website_col", "Favorite URL")
	v.SetDefault("excel.out_cols.funding_classification", "Funding Classification")
	v.SetDefault("excel.out_cols.sector", "Sector")
	v.SetDefault("excel.out_cols.ticket_size_vc", "Ticket Size (VC)")
	v.SetDefault("excel.out_cols.angel_type", "Angel Type")
	v.SetDefault("excel.out_cols.note", "Additional Info")
	v.SetDefault("limits.max_pages_per_site", 5)
	v.SetDefault("network.user_agent", "Mozilla/5.0 (compatible; enrich-cli/1.0)")
	v.SetDefault("network.timeout_secs", 15)
	v.SetDefault("network.sleep_between_requests_sec", 1.5)
	v.SetDefault("network.sleep_between_rows_sec", 0.5)
	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.max_results", 6)
	v.SetDefault("search.attempts", 2)
	v.SetDefault("search.wait_secs", 1)
	v.SetDefault("scrape.exclude_paths", []string{})
	v.SetDefault("scrape.cache_ttl_hours", 168)
	v.SetDefault("scrape.max_chars", 6000)
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.fallbacks", []string{})
	v.SetDefault("llm.model", "llama3.1")
	v.SetDefault("llm.max_tokens", 800)
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.input_price_per_mtok", 1.00)
	v.SetDefault("anthropic.output_price_per_mtok", 5.00)
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("taxonomy.path", "")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("checkpoint.every", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "output/enrich.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
