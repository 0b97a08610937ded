package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Default()
	if cfg.PricePollInterval <= 0 {
		t.Fatal("expected positive price_poll_interval")
	}
	if cfg.LoopInterval <= 0 {
		t.Fatal("expected positive loop_interval")
	}
	if !cfg.DryRun {
		t.Fatal("expected dry run true by default")
	}
	if cfg.TradingMode != "paper" {
		t.Fatalf("expected trading_mode=paper by default, got %q", cfg.TradingMode)
	}
	if len(cfg.Assets) == 0 {
		t.Fatal("expected at least one default asset")
	}
	for _, a := range cfg.Assets {
		if _, ok := cfg.AssetPairs[a]; !ok {
			t.Fatalf("expected asset_pairs entry for %s", a)
		}
		if _, ok := cfg.AssetPrefixes[a]; !ok {
			t.Fatalf("expected asset_prefixes entry for %s", a)
		}
	}
	if cfg.Endpoints.GammaBase == "" {
		t.Fatal("expected a default gamma base endpoint")
	}
	if cfg.Trading.DailyLossLimitUSD <= 0 {
		t.Fatal("expected positive trading.daily_loss_limit_usd by default")
	}
	if cfg.Trading.MaxOpenPositions <= 0 {
		t.Fatal("expected positive trading.max_open_positions by default")
	}
	if cfg.Paper.InitialBalanceUSDC <= 0 {
		t.Fatal("expected positive paper.initial_balance_usdc by default")
	}
	if cfg.Builder.SyncInterval <= 0 {
		t.Fatal("expected positive builder_tracker.sync_interval by default")
	}
}

func TestLoadFromYAML(t *testing.T) {
	yaml := `
trading_mode: live
loop_interval: 30s
assets: [BTC]
asset_pairs:
  BTC: BTC-USD
asset_prefixes:
  BTC: BTC
trading:
  portfolio_trade_pct: 3
  max_market_usd: 75
  max_market_portfolio_pct: 10
  correlation_max_basket_pct: 30
  daily_loss_limit_usd: 40
  take_profit_pct: 20
  stop_loss_pct: 12
  min_liquidity_usd: 150
  market_close_buffer_minutes: 3
  stale_data_threshold_seconds: 45
  max_open_positions: 4
  portfolio_size_usd: 1000
  slippage_bps: 80
paper:
  initial_balance_usdc: 2000
  fee_bps: 12
  slippage_bps: 8
`
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte(yaml)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := LoadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TradingMode != "live" {
		t.Fatalf("expected trading_mode live, got %q", cfg.TradingMode)
	}
	if cfg.LoopInterval != 30*time.Second {
		t.Fatalf("expected 30s loop interval, got %v", cfg.LoopInterval)
	}
	if cfg.Trading.MaxMarketUSD != 75 {
		t.Fatalf("expected max_market_usd 75, got %f", cfg.Trading.MaxMarketUSD)
	}
	if cfg.Trading.DailyLossLimitUSD != 40 {
		t.Fatalf("expected daily_loss_limit_usd 40, got %f", cfg.Trading.DailyLossLimitUSD)
	}
	if cfg.Trading.MaxOpenPositions != 4 {
		t.Fatalf("expected max_open_positions 4, got %d", cfg.Trading.MaxOpenPositions)
	}
	if cfg.Paper.FeeBps != 12 {
		t.Fatalf("expected paper fee_bps 12, got %f", cfg.Paper.FeeBps)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TRADER_DRY_RUN", "false")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.DryRun {
		t.Fatal("expected dry run false from env")
	}
}

func TestLoadFileInvalidPath(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte("{{invalid yaml")); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = LoadFile(f.Name())
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyEnvAllVars(t *testing.T) {
	t.Setenv("POLYMARKET_PK", "test-pk")
	t.Setenv("POLYMARKET_API_KEY", "test-key")
	t.Setenv("POLYMARKET_API_SECRET", "test-secret")
	t.Setenv("POLYMARKET_API_PASSPHRASE", "test-pass")
	t.Setenv("BUILDER_KEY", "builder-key")
	t.Setenv("BUILDER_SECRET", "builder-secret")
	t.Setenv("BUILDER_PASSPHRASE", "builder-pass")
	t.Setenv("TRADER_DATABASE_DSN", "test-dsn")
	t.Setenv("TRADER_DRY_RUN", "1")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.PrivateKey != "test-pk" {
		t.Fatalf("expected PrivateKey test-pk, got %s", cfg.PrivateKey)
	}
	if cfg.APIKey != "test-key" {
		t.Fatalf("expected APIKey test-key, got %s", cfg.APIKey)
	}
	if cfg.APISecret != "test-secret" {
		t.Fatalf("expected APISecret test-secret, got %s", cfg.APISecret)
	}
	if cfg.APIPassphrase != "test-pass" {
		t.Fatalf("expected APIPassphrase test-pass, got %s", cfg.APIPassphrase)
	}
	if cfg.BuilderKey != "builder-key" {
		t.Fatalf("expected BuilderKey builder-key, got %s", cfg.BuilderKey)
	}
	if cfg.BuilderSecret != "builder-secret" {
		t.Fatalf("expected BuilderSecret builder-secret, got %s", cfg.BuilderSecret)
	}
	if cfg.BuilderPassphrase != "builder-pass" {
		t.Fatalf("expected BuilderPassphrase builder-pass, got %s", cfg.BuilderPassphrase)
	}
	if cfg.DatabaseDSN != "test-dsn" {
		t.Fatalf("expected DatabaseDSN test-dsn, got %s", cfg.DatabaseDSN)
	}
	if !cfg.DryRun {
		t.Fatal("expected DryRun true from env '1'")
	}
}

func TestApplyEnvDryRunTrue(t *testing.T) {
	t.Setenv("TRADER_DRY_RUN", "true")
	cfg := Default()
	cfg.DryRun = false
	cfg.ApplyEnv()
	if !cfg.DryRun {
		t.Fatal("expected DryRun true from env 'true'")
	}
}

func TestApplyEnvTradingMode(t *testing.T) {
	t.Setenv("TRADER_TRADING_MODE", "LIVE")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.TradingMode != "live" {
		t.Fatalf("expected trading mode from env to be live, got %q", cfg.TradingMode)
	}
}
