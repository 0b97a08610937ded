package config

import "testing"

func TestApplyRolloutPhasePaper(t *testing.T) {
	cfg := Default()
	cfg.TradingMode = "live"
	cfg.DryRun = true

	if err := ApplyRolloutPhase(&cfg, "paper"); err != nil {
		t.Fatalf("ApplyRolloutPhase: %v", err)
	}
	if cfg.TradingMode != "paper" {
		t.Fatalf("expected paper mode, got %q", cfg.TradingMode)
	}
	if cfg.DryRun {
		t.Fatal("expected dry_run=false for paper phase")
	}
}

func TestApplyRolloutPhaseShadow(t *testing.T) {
	cfg := Default()
	cfg.TradingMode = "paper"
	cfg.DryRun = false

	if err := ApplyRolloutPhase(&cfg, "shadow"); err != nil {
		t.Fatalf("ApplyRolloutPhase: %v", err)
	}
	if cfg.TradingMode != "live" {
		t.Fatalf("expected live mode, got %q", cfg.TradingMode)
	}
	if !cfg.DryRun {
		t.Fatal("expected dry_run=true for shadow phase")
	}
}

func TestApplyRolloutPhaseLiveSmallClamps(t *testing.T) {
	cfg := Default()
	cfg.Trading.MaxMarketUSD = 500
	cfg.Trading.MaxOpenPositions = 50
	cfg.Trading.PortfolioTradePct = 10
	cfg.Trading.DailyLossLimitUSD = 500

	if err := ApplyRolloutPhase(&cfg, "live-small"); err != nil {
		t.Fatalf("ApplyRolloutPhase: %v", err)
	}
	if cfg.TradingMode != "live" {
		t.Fatalf("expected live mode, got %q", cfg.TradingMode)
	}
	if cfg.DryRun {
		t.Fatal("expected dry_run=false for live-small phase")
	}
	if cfg.Trading.MaxMarketUSD != 10 {
		t.Fatalf("expected max_market_usd=10, got %f", cfg.Trading.MaxMarketUSD)
	}
	if cfg.Trading.MaxOpenPositions != 2 {
		t.Fatalf("expected max_open_positions=2, got %d", cfg.Trading.MaxOpenPositions)
	}
	if cfg.Trading.PortfolioTradePct != 0.01 {
		t.Fatalf("expected portfolio_trade_pct=0.01, got %f", cfg.Trading.PortfolioTradePct)
	}
	if cfg.Trading.DailyLossLimitUSD != 10 {
		t.Fatalf("expected daily_loss_limit_usd=10, got %f", cfg.Trading.DailyLossLimitUSD)
	}
	if cfg.Trading.PortfolioSizeUSD <= 0 {
		t.Fatal("expected a positive portfolio_size_usd fallback")
	}
}

func TestApplyRolloutPhaseLive(t *testing.T) {
	cfg := Default()
	cfg.TradingMode = "paper"
	cfg.DryRun = true

	if err := ApplyRolloutPhase(&cfg, "live"); err != nil {
		t.Fatalf("ApplyRolloutPhase: %v", err)
	}
	if cfg.TradingMode != "live" {
		t.Fatalf("expected live mode, got %q", cfg.TradingMode)
	}
	if cfg.DryRun {
		t.Fatal("expected dry_run=false for live phase")
	}
}

func TestApplyRolloutPhaseUnknown(t *testing.T) {
	cfg := Default()
	if err := ApplyRolloutPhase(&cfg, "unknown-phase"); err == nil {
		t.Fatal("expected error for unknown rollout phase")
	}
}
