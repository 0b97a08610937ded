package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Notifier sends alerts to a Telegram chat via the Bot API.
type Notifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	enabled    bool
	baseURL    string // overridable for testing; defaults to Telegram API
}

// NewNotifier creates a Notifier. Notifications are enabled only when both
// botToken and chatID are non-empty.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		enabled:    botToken != "" && chatID != "",
	}
}

// Enabled reports whether the notifier is active.
func (n *Notifier) Enabled() bool { return n.enabled }

// Send posts a message to the configured Telegram chat.
func (n *Notifier) Send(ctx context.Context, msg string) error {
	if !n.enabled {
		return nil
	}

	endpoint := n.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	}
	vals := url.Values{
		"chat_id":    {n.chatID},
		"text":       {msg},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.URL.RawQuery = vals.Encode()

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("notify: telegram %d: %s", resp.StatusCode, body.Description)
	}
	return nil
}

// NotifyBreakerTripped sends an alert when a named circuit breaker trips.
func (n *Notifier) NotifyBreakerTripped(ctx context.Context, name, reason string) error {
	msg := fmt.Sprintf("<b>Breaker Tripped</b>\nBreaker: <code>%s</code>\nReason: %s", name, reason)
	return n.Send(ctx, msg)
}

// NotifyHalted sends an alert when the bot transitions into a halted state.
func (n *Notifier) NotifyHalted(ctx context.Context, state, reason string) error {
	msg := fmt.Sprintf("<b>Trading Halted</b>\nState: <code>%s</code>\nReason: %s", state, reason)
	return n.Send(ctx, msg)
}

// NotifyExit sends an alert when a position closes, whether by take-profit,
// stop-loss, or another exit trigger.
func (n *Notifier) NotifyExit(ctx context.Context, assetID, reason string, realisedPnL float64) error {
	msg := fmt.Sprintf(
		"<b>Position Exit</b>\nAsset: <code>%s</code>\nReason: %s\nRealised PnL: %.2f USDC",
		assetID, reason, realisedPnL,
	)
	return n.Send(ctx, msg)
}

// NotifyDailySummary sends a daily performance summary.
func (n *Notifier) NotifyDailySummary(ctx context.Context, pnl float64, trades int, fees float64) error {
	msg := fmt.Sprintf("<b>Daily Summary</b>\nRealised PnL: %.2f USDC\nTrades: %d\nFees: %.2f USDC", pnl, trades, fees)
	return n.Send(ctx, msg)
}

// NotifyRiskCooldown sends a risk cooldown alert after a loss streak.
func (n *Notifier) NotifyRiskCooldown(ctx context.Context, consecutiveLosses, maxConsecutiveLosses int, cooldownRemaining time.Duration) error {
	msg := fmt.Sprintf(
		"<b>Risk Cooldown</b>\nConsecutive Losses: %d/%d\nCooldown Remaining: %.0fs",
		consecutiveLosses,
		maxConsecutiveLosses,
		cooldownRemaining.Seconds(),
	)
	return n.Send(ctx, msg)
}
