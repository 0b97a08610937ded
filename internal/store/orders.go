package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func rowToOrder(r OrderRow) domain.Order {
	return domain.Order{
		ID:           r.ID,
		LocalID:      r.LocalID,
		ConditionID:  r.ConditionID,
		DecisionID:   r.DecisionID,
		Side:         domain.OrderSide(r.Side),
		TokenID:      r.TokenID,
		Price:        dec(r.Price),
		Size:         dec(r.Size),
		FilledSize:   dec(r.FilledSize),
		Status:       domain.OrderStatus(r.Status),
		Type:         domain.OrderType(r.Type),
		VenueOrderID: r.OrderID,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		CancelledAt:  r.CancelledAt,
	}
}

// NewLocalID mints the local_id assigned before any network call (§4.5 step 1).
func NewLocalID() string { return uuid.NewString() }

// InsertPendingOrderTx persists an order as pending inside an existing
// transaction, before the venue call is made — §4.5 requires the local_id and
// pending row to exist before any network round trip. The risk-gate read that
// authorized the order is not part of tx; risk.Gate serializes the two with
// its own mutex.
func InsertPendingOrderTx(tx *gorm.DB, o domain.Order) (uint, error) {
	row := OrderRow{
		LocalID:     o.LocalID,
		ConditionID: o.ConditionID,
		DecisionID:  o.DecisionID,
		Side:        string(o.Side),
		TokenID:     o.TokenID,
		Price:       decStr(o.Price),
		Size:        decStr(o.Size),
		FilledSize:  "0",
		Status:      string(domain.OrderPending),
		Type:        string(o.Type),
	}
	if err := tx.Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// UpdateOrderStatus transitions an order after the venue call returns (or
// fails), recording the venue order id and any error text (§4.5).
func (s *Store) UpdateOrderStatus(ctx context.Context, id uint, status domain.OrderStatus, venueOrderID, errMsg string) error {
	return s.db.WithContext(ctx).Model(&OrderRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":        string(status),
		"order_id":      venueOrderID,
		"error_message": errMsg,
	}).Error
}

// ApplyFill bumps filled_size and status for a partial or complete fill.
func (s *Store) ApplyFill(ctx context.Context, id uint, filledSize decimal.Decimal, fullyFilled bool) error {
	status := domain.OrderPartiallyFilled
	if fullyFilled {
		status = domain.OrderFilled
	}
	return s.db.WithContext(ctx).Model(&OrderRow{}).Where("id = ?", id).Updates(map[string]any{
		"filled_size": decStr(filledSize),
		"status":      string(status),
	}).Error
}

// MarkCancelled records a successful cancel (§4.5 Cancel operation).
func (s *Store) MarkCancelled(ctx context.Context, id uint) error {
	now := nowUTC()
	return s.db.WithContext(ctx).Model(&OrderRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":       string(domain.OrderCancelled),
		"cancelled_at": &now,
	}).Error
}

// OrderByID fetches one order by its primary key.
func (s *Store) OrderByID(ctx context.Context, id uint) (domain.Order, error) {
	var row OrderRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return domain.Order{}, err
	}
	return rowToOrder(row), nil
}

// OrdersByStatus returns every order in one of the given statuses, the shape
// CancelAll uses to find pending/open orders to tear down (§4.5).
func (s *Store) OrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	var rows []OrderRow
	if err := s.db.WithContext(ctx).Where("status IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, len(rows))
	for i, r := range rows {
		out[i] = rowToOrder(r)
	}
	return out, nil
}

// RecordTrade appends one fill row, keyed on trade_id (§6).
func (s *Store) RecordTrade(ctx context.Context, t domain.Trade) error {
	return s.db.WithContext(ctx).Create(&TradeRow{
		TradeID:   t.TradeID,
		OrderID:   t.OrderID,
		Price:     decStr(t.Price),
		Size:      decStr(t.Size),
		Fee:       decStr(t.Fee),
		Timestamp: t.Timestamp,
	}).Error
}
