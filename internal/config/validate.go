package config

import (
	"fmt"
	"strings"
)

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.TradingMode))
	if mode != "" && mode != "paper" && mode != "live" {
		return fmt.Errorf("trading_mode must be 'paper' or 'live', got %q", c.TradingMode)
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("assets must list at least one symbol")
	}
	for _, a := range c.Assets {
		if _, ok := c.AssetPairs[a]; !ok {
			return fmt.Errorf("asset_pairs missing an entry for asset %q", a)
		}
		if _, ok := c.AssetPrefixes[a]; !ok {
			return fmt.Errorf("asset_prefixes missing an entry for asset %q", a)
		}
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database_dsn must be set")
	}
	if c.PricePollInterval <= 0 {
		return fmt.Errorf("price_poll_interval must be > 0, got %s", c.PricePollInterval)
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("loop_interval must be > 0, got %s", c.LoopInterval)
	}

	if c.Paper.InitialBalanceUSDC <= 0 {
		return fmt.Errorf("paper.initial_balance_usdc must be > 0, got %f", c.Paper.InitialBalanceUSDC)
	}
	if c.Paper.FeeBps < 0 {
		return fmt.Errorf("paper.fee_bps must be >= 0, got %f", c.Paper.FeeBps)
	}
	if c.Paper.SlippageBps < 0 {
		return fmt.Errorf("paper.slippage_bps must be >= 0, got %f", c.Paper.SlippageBps)
	}

	t := c.Trading
	if t.PortfolioTradePct <= 0 || t.PortfolioTradePct > 100 {
		return fmt.Errorf("trading.portfolio_trade_pct must be within (0,100], got %f", t.PortfolioTradePct)
	}
	if t.MaxMarketUSD <= 0 {
		return fmt.Errorf("trading.max_market_usd must be > 0, got %f", t.MaxMarketUSD)
	}
	if t.MaxMarketPortfolioPct <= 0 || t.MaxMarketPortfolioPct > 100 {
		return fmt.Errorf("trading.max_market_portfolio_pct must be within (0,100], got %f", t.MaxMarketPortfolioPct)
	}
	if t.CorrelationMaxBasketPct <= 0 || t.CorrelationMaxBasketPct > 100 {
		return fmt.Errorf("trading.correlation_max_basket_pct must be within (0,100], got %f", t.CorrelationMaxBasketPct)
	}
	if t.DailyLossLimitUSD <= 0 {
		return fmt.Errorf("trading.daily_loss_limit_usd must be > 0, got %f", t.DailyLossLimitUSD)
	}
	if t.TakeProfitPct <= 0 {
		return fmt.Errorf("trading.take_profit_pct must be > 0, got %f", t.TakeProfitPct)
	}
	if t.StopLossPct <= 0 {
		return fmt.Errorf("trading.stop_loss_pct must be > 0, got %f", t.StopLossPct)
	}
	if t.MinLiquidityUSD < 0 {
		return fmt.Errorf("trading.min_liquidity_usd must be >= 0, got %f", t.MinLiquidityUSD)
	}
	if t.MarketCloseBufferMinutes < 0 {
		return fmt.Errorf("trading.market_close_buffer_minutes must be >= 0, got %d", t.MarketCloseBufferMinutes)
	}
	if t.StaleDataThresholdSeconds <= 0 {
		return fmt.Errorf("trading.stale_data_threshold_seconds must be > 0, got %d", t.StaleDataThresholdSeconds)
	}
	if t.MaxOpenPositions <= 0 {
		return fmt.Errorf("trading.max_open_positions must be > 0, got %d", t.MaxOpenPositions)
	}
	if t.PortfolioSizeUSD <= 0 {
		return fmt.Errorf("trading.portfolio_size_usd must be > 0, got %f", t.PortfolioSizeUSD)
	}

	return nil
}
