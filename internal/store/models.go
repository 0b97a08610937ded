package store

import "time"

// Rows below mirror the schema named in spec §6 one table per struct, following
// ChoSanghyuk-blackholedex/internal/db/transaction_recorder.go's pattern of a
// GORM row type + explicit TableName() per entity. Decimal fields are stored as
// strings (varchar) to keep shopspring/decimal's arbitrary precision intact
// across the wire, the same way the teacher's pack-mate stores big.Int as a
// decimal string.

type BotStateRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Value     string    `gorm:"type:varchar(32);not null"`
	Actor     string    `gorm:"type:varchar(64)"`
	Reason    string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (BotStateRow) TableName() string { return "bot_state" }

type AuditLogRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"index;not null"`
	Kind      string    `gorm:"type:varchar(64);not null;index"`
	Actor     string    `gorm:"type:varchar(64)"`
	Details   JSONMap   `gorm:"type:text"`
}

func (AuditLogRow) TableName() string { return "audit_log" }

type PriceRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Symbol    string    `gorm:"type:varchar(32);not null;index:idx_prices_symbol_ts"`
	Price     string    `gorm:"type:varchar(64);not null"`
	Timestamp time.Time `gorm:"not null;index:idx_prices_symbol_ts"`
}

func (PriceRow) TableName() string { return "prices" }

type CandleRow struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Symbol        string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_candles_key"`
	TimeframeSecs int       `gorm:"not null;uniqueIndex:idx_candles_key"`
	OpenTime      time.Time `gorm:"not null;uniqueIndex:idx_candles_key"`
	CloseTime     time.Time `gorm:"not null"`
	Open          string    `gorm:"type:varchar(64);not null"`
	High          string    `gorm:"type:varchar(64);not null"`
	Low           string    `gorm:"type:varchar(64);not null"`
	Close         string    `gorm:"type:varchar(64);not null"`
	Volume        string    `gorm:"type:varchar(64);not null"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (CandleRow) TableName() string { return "candles" }

type MarketRow struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ConditionID string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	Asset       string    `gorm:"type:varchar(32);not null;index"`
	Question    string    `gorm:"type:varchar(512)"`
	EndTime     time.Time `gorm:"not null;index"`
	YesTokenID  string    `gorm:"type:varchar(128);not null"`
	NoTokenID   string    `gorm:"type:varchar(128);not null"`
	Active      bool      `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (MarketRow) TableName() string { return "markets" }

type MarketSnapshotRow struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ConditionID string    `gorm:"type:varchar(128);not null;index"`
	TokenID     string    `gorm:"type:varchar(128);not null;index"`
	BestBid     string    `gorm:"type:varchar(64)"`
	BestAsk     string    `gorm:"type:varchar(64)"`
	BidDepth    string    `gorm:"type:varchar(64)"`
	AskDepth    string    `gorm:"type:varchar(64)"`
	Timestamp   time.Time `gorm:"not null;index"`
}

func (MarketSnapshotRow) TableName() string { return "market_snapshots" }

type DecisionRow struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp   time.Time `gorm:"not null;index"`
	Asset       string    `gorm:"type:varchar(32);not null;index"`
	ConditionID string    `gorm:"type:varchar(128)"`
	Direction   string    `gorm:"type:varchar(16);not null"`
	Confidence  float64   `gorm:"not null"`
	Reason      string    `gorm:"type:varchar(255)"`
	Features    JSONMap   `gorm:"type:text"`
	RiskChecks  JSONMap   `gorm:"type:text"`
	Executed    bool      `gorm:"not null;index"`
	OrderID     *uint
}

func (DecisionRow) TableName() string { return "decisions" }

type OrderRow struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	LocalID      string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	OrderID      string    `gorm:"type:varchar(128);uniqueIndex:idx_orders_order_id,where:order_id <> ''"`
	ConditionID  string    `gorm:"type:varchar(128);index"`
	DecisionID   *uint     `gorm:"index"`
	Side         string    `gorm:"type:varchar(8);not null"`
	TokenID      string    `gorm:"type:varchar(128);not null;index"`
	Price        string    `gorm:"type:varchar(64);not null"`
	Size         string    `gorm:"type:varchar(64);not null"`
	FilledSize   string    `gorm:"type:varchar(64);not null;default:'0'"`
	Status       string    `gorm:"type:varchar(24);not null;index"`
	Type         string    `gorm:"type:varchar(32);not null"`
	ErrorMessage string    `gorm:"type:varchar(512)"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
	CancelledAt  *time.Time
}

func (OrderRow) TableName() string { return "orders" }

type TradeRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	TradeID   string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	OrderID   uint      `gorm:"not null;index"`
	Price     string    `gorm:"type:varchar(64);not null"`
	Size      string    `gorm:"type:varchar(64);not null"`
	Fee       string    `gorm:"type:varchar(64);not null"`
	Timestamp time.Time `gorm:"not null;index"`
}

func (TradeRow) TableName() string { return "trades" }

type PositionRow struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	ConditionID   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_positions_open_key"`
	Asset         string    `gorm:"type:varchar(32);not null;index"`
	TokenID       string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_positions_open_key"`
	Side          string    `gorm:"type:varchar(8);not null"`
	Size          string    `gorm:"type:varchar(64);not null"`
	AvgEntryPrice string    `gorm:"type:varchar(64);not null"`
	Status        string    `gorm:"type:varchar(16);not null;index;uniqueIndex:idx_positions_open_key"`
	RealisedPnL   string    `gorm:"type:varchar(64);not null;default:'0'"`
	OpenedAt      time.Time `gorm:"not null"`
	ClosedAt      *time.Time
}

func (PositionRow) TableName() string { return "positions" }

type DailyPnLRow struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Date        time.Time `gorm:"not null;uniqueIndex"`
	RealisedPnL string    `gorm:"type:varchar(64);not null;default:'0'"`
	Fees        string    `gorm:"type:varchar(64);not null;default:'0'"`
	TradeCount  int       `gorm:"not null;default:0"`
	WinCount    int       `gorm:"not null;default:0"`
	LossCount   int       `gorm:"not null;default:0"`
}

func (DailyPnLRow) TableName() string { return "daily_pnl" }

type RiskMetricRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"not null;index"`
	Asset     string    `gorm:"type:varchar(32);index"`
	Metric    string    `gorm:"type:varchar(64);not null"`
	Value     float64   `gorm:"not null"`
}

func (RiskMetricRow) TableName() string { return "risk_metrics" }

type ConfigRow struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Value     JSONMap   `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ConfigRow) TableName() string { return "config" }

type CircuitBreakerRow struct {
	BreakerName   string `gorm:"type:varchar(64);primaryKey"`
	Tripped       bool   `gorm:"not null;index"`
	TripCount     int    `gorm:"not null;default:0"`
	LastReason    string `gorm:"type:varchar(255)"`
	LastTrippedAt *time.Time
	LastResetAt   *time.Time
}

func (CircuitBreakerRow) TableName() string { return "circuit_breakers" }

type HealthCheckRow struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"not null;index"`
	Component string    `gorm:"type:varchar(64);not null;index"`
	Healthy   bool      `gorm:"not null"`
	Detail    string    `gorm:"type:varchar(255)"`
}

func (HealthCheckRow) TableName() string { return "health_checks" }

// AllModels lists every row type for AutoMigrate.
func AllModels() []any {
	return []any{
		&BotStateRow{},
		&AuditLogRow{},
		&PriceRow{},
		&CandleRow{},
		&MarketRow{},
		&MarketSnapshotRow{},
		&DecisionRow{},
		&OrderRow{},
		&TradeRow{},
		&PositionRow{},
		&DailyPnLRow{},
		&RiskMetricRow{},
		&ConfigRow{},
		&CircuitBreakerRow{},
		&HealthCheckRow{},
	}
}
