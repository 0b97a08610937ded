package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration: secrets, wiring, and the trading
// surface named in §6. Shape follows the teacher's flat Config-plus-nested-
// sections style (config.go), generalized from market-making knobs to the
// UpDown risk/signal surface.
type Config struct {
	PrivateKey        string `yaml:"private_key"`
	APIKey            string `yaml:"api_key"`
	APISecret         string `yaml:"api_secret"`
	APIPassphrase     string `yaml:"api_passphrase"`
	BuilderKey        string `yaml:"builder_key"`
	BuilderSecret     string `yaml:"builder_secret"`
	BuilderPassphrase string `yaml:"builder_passphrase"`

	DatabaseDSN string `yaml:"database_dsn"`

	PricePollInterval    time.Duration `yaml:"price_poll_interval"`    // T1
	CandleRefreshInterval time.Duration `yaml:"candle_refresh_interval"` // T2 (piggybacked on T1)
	LoopInterval         time.Duration `yaml:"loop_interval"`          // T3

	DryRun      bool   `yaml:"dry_run"`
	TradingMode string `yaml:"trading_mode"`
	LogLevel    string `yaml:"log_level"`

	Assets []string `yaml:"assets"`

	// AssetPairs maps an asset code to the price feed's venue pair, e.g.
	// "BTC" -> "BTC-USD". AssetPrefixes maps it to the market-discovery slug
	// prefix, usually identical to the asset code.
	AssetPairs    map[string]string `yaml:"asset_pairs"`
	AssetPrefixes map[string]string `yaml:"asset_prefixes"`

	Endpoints EndpointsConfig `yaml:"endpoints"`
	Trading   TradingConfig   `yaml:"trading"`
	Paper     PaperConfig     `yaml:"paper"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	API       APIConfig       `yaml:"api"`
	Builder   BuilderConfig   `yaml:"builder_tracker"`

	ConfigCacheTTL time.Duration `yaml:"config_cache_ttl"`
}

// EndpointsConfig names the base URLs each hand-rolled REST client polls or
// posts to; none of these are wrapped behind an SDK (§1 Non-goals).
type EndpointsConfig struct {
	PriceFeedBase string `yaml:"price_feed_base"`
	GammaBase     string `yaml:"gamma_base"`
	CLOBBase      string `yaml:"clob_base"`
	ExecutionBase string `yaml:"execution_base"`
	DataAPIBase   string `yaml:"data_api_base"`
}

// BuilderConfig drives the out-of-core-scope builder-volume admin surface.
type BuilderConfig struct {
	Enabled      bool          `yaml:"enabled"`
	BuilderID    string        `yaml:"builder_id"`
	SyncInterval time.Duration `yaml:"sync_interval"`
}

// TradingConfig is the hot-reloadable surface named in §6. The *Pct fields
// are percentage points (2 means 2%), not fractions — the risk gate divides
// them by 100 itself, matching the formulas that name them.
type TradingConfig struct {
	PortfolioTradePct        float64 `yaml:"portfolio_trade_pct"`
	MaxMarketUSD             float64 `yaml:"max_market_usd"`
	MaxMarketPortfolioPct    float64 `yaml:"max_market_portfolio_pct"`
	CorrelationMaxBasketPct  float64 `yaml:"correlation_max_basket_pct"`
	DailyLossLimitUSD        float64 `yaml:"daily_loss_limit_usd"`
	TakeProfitPct            float64 `yaml:"take_profit_pct"`
	StopLossPct              float64 `yaml:"stop_loss_pct"`
	MinLiquidityUSD          float64 `yaml:"min_liquidity_usd"`
	MarketCloseBufferMinutes int     `yaml:"market_close_buffer_minutes"`
	StaleDataThresholdSeconds int    `yaml:"stale_data_threshold_seconds"`
	MaxOpenPositions         int     `yaml:"max_open_positions"`
	LLMAdvisorEnabled        bool    `yaml:"llm_advisor_enabled"`
	PortfolioSizeUSD         float64 `yaml:"portfolio_size_usd"`
	SlippageBps              int    `yaml:"slippage_bps"`
	MaxConsecutiveLosses     int           `yaml:"max_consecutive_losses"`
	LossCooldown             time.Duration `yaml:"loss_cooldown"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PaperConfig holds the teacher's paper-trading settings. Validate checks
// them; no order path reads them (simulated orders come from the Execution
// Module's no-credentials path).
type PaperConfig struct {
	InitialBalanceUSDC float64 `yaml:"initial_balance_usdc"`
	FeeBps             float64 `yaml:"fee_bps"`
	SlippageBps        float64 `yaml:"slippage_bps"`
}

func Default() Config {
	return Config{
		DatabaseDSN:           "trader:trader@tcp(127.0.0.1:3306)/updown_trader?charset=utf8mb4&parseTime=True&loc=UTC",
		PricePollInterval:     5 * time.Second,
		CandleRefreshInterval: 5 * time.Minute,
		LoopInterval:          60 * time.Second,
		DryRun:                true,
		TradingMode:           "paper",
		LogLevel:              "info",
		Assets:                []string{"BTC", "ETH"},
		AssetPairs: map[string]string{
			"BTC": "BTC-USD",
			"ETH": "ETH-USD",
		},
		AssetPrefixes: map[string]string{
			"BTC": "BTC",
			"ETH": "ETH",
		},
		Endpoints: EndpointsConfig{
			PriceFeedBase: "https://api.coinbase.com",
			GammaBase:     "https://gamma-api.polymarket.com",
			CLOBBase:      "https://clob.polymarket.com",
			ExecutionBase: "https://clob.polymarket.com",
			DataAPIBase:   "https://data-api.polymarket.com",
		},
		Builder: BuilderConfig{
			Enabled:      false,
			SyncInterval: 10 * time.Minute,
		},
		Trading: TradingConfig{
			PortfolioTradePct:         2,
			MaxMarketUSD:              50,
			MaxMarketPortfolioPct:     10,
			CorrelationMaxBasketPct:   30,
			DailyLossLimitUSD:         25,
			TakeProfitPct:             15,
			StopLossPct:               10,
			MinLiquidityUSD:           100,
			MarketCloseBufferMinutes:  2,
			StaleDataThresholdSeconds: 30,
			MaxOpenPositions:          5,
			LLMAdvisorEnabled:         false,
			PortfolioSizeUSD:          500,
			SlippageBps:               100,
			MaxConsecutiveLosses:      3,
			LossCooldown:              15 * time.Minute,
		},
		Paper: PaperConfig{
			InitialBalanceUSDC: 500,
			FeeBps:             200,
			SlippageBps:        10,
		},
		API: APIConfig{
			Addr: ":8080",
		},
		ConfigCacheTTL: 60 * time.Second,
	}
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays secrets and a handful of operational toggles from the
// environment, the same set of concerns (never the trading surface itself)
// the teacher's ApplyEnv covers.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("POLYMARKET_PK"); v != "" {
		c.PrivateKey = v
	}
	if v := os.Getenv("POLYMARKET_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("POLYMARKET_API_SECRET"); v != "" {
		c.APISecret = v
	}
	if v := os.Getenv("POLYMARKET_API_PASSPHRASE"); v != "" {
		c.APIPassphrase = v
	}
	if v := os.Getenv("BUILDER_KEY"); v != "" {
		c.BuilderKey = v
	}
	if v := os.Getenv("BUILDER_SECRET"); v != "" {
		c.BuilderSecret = v
	}
	if v := os.Getenv("BUILDER_PASSPHRASE"); v != "" {
		c.BuilderPassphrase = v
	}
	if v := os.Getenv("TRADER_DATABASE_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("TRADER_DRY_RUN"); v != "" {
		c.DryRun = strings.EqualFold(v, "true") || v == "1"
	}
	if v := strings.TrimSpace(os.Getenv("TRADER_TRADING_MODE")); v != "" {
		c.TradingMode = strings.ToLower(v)
	}
}
