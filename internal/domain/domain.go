// Package domain holds the plain value types exchanged between trading pipeline
// components. None of these carry a persistence handle; the store package maps
// them to and from GORM rows.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the outcome a Decision leans toward.
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// OrderSide is the venue side of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderStatus is a node in the monotone order lifecycle graph described in §3.
type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderOpen            OrderStatus = "open"
	OrderPartiallyFilled OrderStatus = "partially_filled"
	OrderFilled          OrderStatus = "filled"
	OrderCancelled       OrderStatus = "cancelled"
	OrderRejected        OrderStatus = "rejected"
	OrderError           OrderStatus = "error"
	OrderSimulated       OrderStatus = "simulated"
)

// OrderType distinguishes a marketable limit from other shapes. The core only
// ever emits marketable limits (§1 Non-goals); the field is a plain string, so
// other order types can be stored without a schema change.
type OrderType string

const (
	OrderTypeMarketableLimit OrderType = "marketable_limit"
)

// PositionSide is which outcome token a position holds.
type PositionSide string

const (
	PositionYes PositionSide = "YES"
	PositionNo  PositionSide = "NO"
)

// PositionStatus tracks whether a position still carries size.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// BotStateValue is the single logical trading-state value described in §4.4.
type BotStateValue string

const (
	StateRunning              BotStateValue = "RUNNING"
	StatePaused               BotStateValue = "PAUSED"
	StateStopped              BotStateValue = "STOPPED"
	StateHaltedDailyLoss      BotStateValue = "HALTED_DAILY_LOSS"
	StateHaltedCircuitBreaker BotStateValue = "HALTED_CIRCUIT_BREAKER"
)

// Breaker names recognized by the Risk Gate (§4.4 "named breakers include at minimum").
const (
	BreakerStaleData              = "stale_data"
	BreakerDailyLossLimit         = "daily_loss_limit"
	BreakerReconciliationMismatch = "reconciliation_mismatch"
	BreakerEmergency              = "emergency"
)

// Candle is a single 15-minute OHLCV bar for a symbol.
type Candle struct {
	Symbol    string
	Timeframe time.Duration
	OpenTime  time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// SpotPrice is one tick of the append-only reference price stream.
type SpotPrice struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

// Market is a binary UpDown market for one underlying asset.
type Market struct {
	ConditionID string
	Asset       string
	Question    string
	EndTime     time.Time
	YesTokenID  string
	NoTokenID   string
	Active      bool
}

// TradableAt reports whether this market can still be entered (and, crucially,
// exited) at time t given the configured close buffer.
func (m Market) TradableAt(asset string, t time.Time, closeBuffer time.Duration) bool {
	return m.Active && m.Asset == asset && m.EndTime.After(t.Add(closeBuffer))
}

// OrderbookLevel is one price/size rung.
type OrderbookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Orderbook is a point-in-time snapshot of one token's book.
type Orderbook struct {
	TokenID  string
	Bids     []OrderbookLevel // best-first
	Asks     []OrderbookLevel // best-first
	Snapshot time.Time
}

// BestBid returns the best bid level and whether one exists.
func (b Orderbook) BestBid() (OrderbookLevel, bool) {
	if len(b.Bids) == 0 {
		return OrderbookLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the best ask level and whether one exists.
func (b Orderbook) BestAsk() (OrderbookLevel, bool) {
	if len(b.Asks) == 0 {
		return OrderbookLevel{}, false
	}
	return b.Asks[0], true
}

// Depth sums size over the top n levels of a side.
func Depth(levels []OrderbookLevel, n int) decimal.Decimal {
	sum := decimal.Zero
	for i := 0; i < n && i < len(levels); i++ {
		sum = sum.Add(levels[i].Size)
	}
	return sum
}

// Decision is one signal-generator evaluation, written regardless of whether it trades.
type Decision struct {
	ID          uint
	Timestamp   time.Time
	Asset       string
	ConditionID string
	Direction   Direction
	Confidence  float64
	Features    map[string]float64
	Reason      string
	Executed    bool
	OrderID     *uint
}

// Order is one signed venue order and its local lifecycle state.
type Order struct {
	ID           uint            `json:"id"`
	LocalID      string          `json:"local_id"`
	ConditionID  string          `json:"condition_id"`
	DecisionID   *uint           `json:"decision_id,omitempty"`
	Side         OrderSide       `json:"side"`
	TokenID      string          `json:"token_id"`
	Price        decimal.Decimal `json:"price"`
	Size         decimal.Decimal `json:"size"`
	FilledSize   decimal.Decimal `json:"filled_size"`
	Status       OrderStatus     `json:"status"`
	Type         OrderType       `json:"type"`
	VenueOrderID string          `json:"venue_order_id"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

// Trade is one append-only fill against an Order.
type Trade struct {
	ID        uint            `json:"id"`
	TradeID   string          `json:"trade_id"`
	OrderID   uint            `json:"order_id"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Fee       decimal.Decimal `json:"fee"`
	Timestamp time.Time       `json:"timestamp"`
}

// Position is the aggregated open/closed holding for (market, token).
type Position struct {
	ID            uint            `json:"id"`
	ConditionID   string          `json:"condition_id"`
	Asset         string          `json:"asset"`
	TokenID       string          `json:"token_id"`
	Side          PositionSide    `json:"side"`
	Size          decimal.Decimal `json:"size"`
	AvgEntryPrice decimal.Decimal `json:"avg_entry_price"`
	Status        PositionStatus  `json:"status"`
	RealisedPnL   decimal.Decimal `json:"realised_pnl"`
	OpenedAt      time.Time       `json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
}

// Exposure is size * avg_entry_price, the risk gate's unit of concentration.
func (p Position) Exposure() decimal.Decimal {
	return p.Size.Mul(p.AvgEntryPrice)
}

// DailyPnL is the running accounting row for one UTC calendar day.
type DailyPnL struct {
	Date        time.Time       `json:"date"` // UTC midnight
	RealisedPnL decimal.Decimal `json:"realised_pnl"`
	Fees        decimal.Decimal `json:"fees"`
	TradeCount  int             `json:"trade_count"`
	WinCount    int             `json:"win_count"`
	LossCount   int             `json:"loss_count"`
}

// CircuitBreaker is a named latch that blocks trading while tripped.
type CircuitBreaker struct {
	Name          string     `json:"name"`
	Tripped       bool       `json:"tripped"`
	TripCount     int        `json:"trip_count"`
	LastReason    string     `json:"last_reason,omitempty"`
	LastTrippedAt *time.Time `json:"last_tripped_at,omitempty"`
	LastResetAt   *time.Time `json:"last_reset_at,omitempty"`
}

// AuditEvent is one append-only state-changing event.
type AuditEvent struct {
	ID        uint
	Timestamp time.Time
	Kind      string
	Actor     string
	Details   map[string]any
}
