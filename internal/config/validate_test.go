package config

import "testing"

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got: %v", err)
	}
}

func TestValidateInvalidTradingMode(t *testing.T) {
	cfg := Default()
	cfg.TradingMode = "invalid-mode"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid trading_mode to fail validation")
	}
}

func TestValidateInvalidPaperConfig(t *testing.T) {
	cfg := Default()
	cfg.Paper.InitialBalanceUSDC = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected non-positive paper.initial_balance_usdc to fail validation")
	}

	cfg = Default()
	cfg.Paper.FeeBps = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative paper.fee_bps to fail validation")
	}
}

func TestValidateMissingAssetMapping(t *testing.T) {
	cfg := Default()
	cfg.Assets = append(cfg.Assets, "SOL")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a missing asset_pairs/asset_prefixes entry to fail validation")
	}
}

func TestValidateInvalidTradingPct(t *testing.T) {
	cfg := Default()
	cfg.Trading.PortfolioTradePct = 150
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected trading.portfolio_trade_pct > 100 to fail validation")
	}

	cfg = Default()
	cfg.Trading.CorrelationMaxBasketPct = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative trading.correlation_max_basket_pct to fail validation")
	}
}
