package config

import (
	"fmt"
	"strings"
)

// ApplyRolloutPhase applies a staged rollout preset to the config.
// Supported phases:
// - paper:       trading_mode=paper, dry_run=false
// - shadow:      trading_mode=live, dry_run=true
// - live-small:  trading_mode=live, dry_run=false, conservative small-size caps
// - live:        trading_mode=live, dry_run=false, configured values
//
// TradingMode and DryRun are validated and logged at start-up only; they do
// not gate order placement. Orders reach the venue whenever a private key is
// configured and are simulated otherwise, whatever the phase.
func ApplyRolloutPhase(cfg *Config, phase string) error {
	p := strings.ToLower(strings.TrimSpace(phase))
	if p == "" {
		return nil
	}

	switch p {
	case "paper":
		cfg.TradingMode = "paper"
		cfg.DryRun = false
	case "shadow", "live-dryrun", "live-dry-run":
		cfg.TradingMode = "live"
		cfg.DryRun = true
	case "live-small", "small":
		cfg.TradingMode = "live"
		cfg.DryRun = false

		clampMaxFloat(&cfg.Trading.MaxMarketUSD, 10)
		clampMaxInt(&cfg.Trading.MaxOpenPositions, 2)
		clampMaxFloat(&cfg.Trading.PortfolioTradePct, 0.01)
		clampMaxFloat(&cfg.Trading.DailyLossLimitUSD, 10)
		if cfg.Trading.PortfolioSizeUSD <= 0 {
			cfg.Trading.PortfolioSizeUSD = 500
		}
	case "live":
		cfg.TradingMode = "live"
		cfg.DryRun = false
	default:
		return fmt.Errorf("unknown rollout phase %q (supported: paper|shadow|live-small|live)", phase)
	}

	return nil
}

func clampMaxFloat(v *float64, max float64) {
	if max <= 0 {
		return
	}
	if *v <= 0 || *v > max {
		*v = max
	}
}

func clampMaxInt(v *int, max int) {
	if max <= 0 {
		return
	}
	if *v <= 0 || *v > max {
		*v = max
	}
}
