package config

import (
	"context"
	"sync"
	"time"
)

// ValueSource is the subset of the State Store's config access the overlay
// needs; internal/store.Store satisfies it without this package importing
// store directly (config sits below store in the dependency graph).
type ValueSource interface {
	ConfigValues(ctx context.Context) (map[string]any, error)
}

// HotReloader overlays config-table values onto a base TradingConfig, with a
// cache TTL (§6: "hot-reloadable with a cache no older than 60 seconds").
// Config keys absent from the store fall back to the base value untouched.
type HotReloader struct {
	source ValueSource
	ttl    time.Duration

	mu       sync.Mutex
	cached   TradingConfig
	cachedAt time.Time
	base     TradingConfig
}

func NewHotReloader(source ValueSource, base TradingConfig, ttl time.Duration) *HotReloader {
	if ttl <= 0 || ttl > 60*time.Second {
		ttl = 60 * time.Second
	}
	return &HotReloader{source: source, ttl: ttl, base: base, cached: base}
}

// Current returns the trading config, refreshing from the store if the cache
// has aged past the TTL. A store error leaves the last good cache in place.
func (h *HotReloader) Current(ctx context.Context) TradingConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	if time.Since(h.cachedAt) < h.ttl {
		return h.cached
	}
	values, err := h.source.ConfigValues(ctx)
	if err != nil {
		h.cachedAt = time.Now()
		return h.cached
	}
	merged := h.base
	applyOverride(&merged.PortfolioTradePct, values, "portfolio_trade_pct")
	applyOverride(&merged.MaxMarketUSD, values, "max_market_usd")
	applyOverride(&merged.MaxMarketPortfolioPct, values, "max_market_portfolio_pct")
	applyOverride(&merged.CorrelationMaxBasketPct, values, "correlation_max_basket_pct")
	applyOverride(&merged.DailyLossLimitUSD, values, "daily_loss_limit_usd")
	applyOverride(&merged.TakeProfitPct, values, "take_profit_pct")
	applyOverride(&merged.StopLossPct, values, "stop_loss_pct")
	applyOverride(&merged.MinLiquidityUSD, values, "min_liquidity_usd")
	applyOverride(&merged.PortfolioSizeUSD, values, "portfolio_size_usd")
	applyIntOverride(&merged.MarketCloseBufferMinutes, values, "market_close_buffer_minutes")
	applyIntOverride(&merged.StaleDataThresholdSeconds, values, "stale_data_threshold_seconds")
	applyIntOverride(&merged.MaxOpenPositions, values, "max_open_positions")
	applyBoolOverride(&merged.LLMAdvisorEnabled, values, "llm_advisor_enabled")

	h.cached = merged
	h.cachedAt = time.Now()
	return h.cached
}

func applyOverride(field *float64, values map[string]any, key string) {
	if v, ok := values[key]; ok {
		if f, ok := v.(float64); ok {
			*field = f
		}
	}
}

func applyIntOverride(field *int, values map[string]any, key string) {
	if v, ok := values[key]; ok {
		if f, ok := v.(float64); ok {
			*field = int(f)
		}
	}
}

func applyBoolOverride(field *bool, values map[string]any, key string) {
	if v, ok := values[key]; ok {
		if b, ok := v.(bool); ok {
			*field = b
		}
	}
}
