package execution

import (
	"context"
	"fmt"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/polybot/updown-trader/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultSlippageBps is used when config leaves slippage unset.
const DefaultSlippageBps = 100

// Module is the Execution Module: validates, persists, submits, and cancels
// orders, and derives marketable-limit prices from the current book. It does
// not reconcile local order state against the venue, and nothing here trips
// the reconciliation_mismatch breaker.
type Module struct {
	st     *store.Store
	client *Client
}

func NewModule(st *store.Store, client *Client) *Module {
	return &Module{st: st, client: client}
}

// MarketableLimitPrice derives the aggressive-but-bounded limit price for
// side against ob, per §4.5: best_ask+slippage for BUY (ceil 0.99),
// best_bid-slippage for SELL (floor 0.01). An empty relevant side of the
// book is a "no-book" failure.
func MarketableLimitPrice(ob domain.Orderbook, side domain.OrderSide, slippageBps int) (decimal.Decimal, error) {
	if slippageBps <= 0 {
		slippageBps = DefaultSlippageBps
	}
	slip := decimal.NewFromInt(int64(slippageBps)).Div(decimal.NewFromInt(10_000))

	switch side {
	case domain.SideBuy:
		ask, ok := ob.BestAsk()
		if !ok {
			return decimal.Zero, fmt.Errorf("execution: no-book: empty ask side for %s", ob.TokenID)
		}
		price := ask.Price.Add(slip)
		if price.GreaterThan(decimal.NewFromFloat(0.99)) {
			price = decimal.NewFromFloat(0.99)
		}
		return price, nil
	case domain.SideSell:
		bid, ok := ob.BestBid()
		if !ok {
			return decimal.Zero, fmt.Errorf("execution: no-book: empty bid side for %s", ob.TokenID)
		}
		price := bid.Price.Sub(slip)
		if price.LessThan(decimal.NewFromFloat(0.01)) {
			price = decimal.NewFromFloat(0.01)
		}
		return price, nil
	default:
		return decimal.Zero, fmt.Errorf("execution: unknown side %q", side)
	}
}

// Submit validates, persists a pending order, then attempts venue
// submission, exactly in that order per §4.5 ("persist pending BEFORE
// network call"). A nil client.signer (no configured credentials) returns
// a simulated order without a network call.
func (m *Module) Submit(ctx context.Context, o domain.Order) (domain.Order, error) {
	if !(o.Price.GreaterThan(decimal.Zero) && o.Price.LessThan(decimal.NewFromInt(1))) {
		return domain.Order{}, fmt.Errorf("execution: price %s out of (0,1)", o.Price)
	}
	if !o.Size.GreaterThan(decimal.Zero) {
		return domain.Order{}, fmt.Errorf("execution: size %s must be > 0", o.Size)
	}

	o.LocalID = store.NewLocalID()
	o.Status = domain.OrderPending
	o.Type = domain.OrderTypeMarketableLimit

	id, err := m.persistPending(ctx, o)
	if err != nil {
		return domain.Order{}, err
	}
	o.ID = id

	if !m.client.HasCredentials() {
		o.Status = domain.OrderSimulated
		if err := m.st.UpdateOrderStatus(ctx, o.ID, domain.OrderSimulated, "", ""); err != nil {
			return o, err
		}
		return o, nil
	}

	result, err := m.client.submit(ctx, o.TokenID, string(o.Side), o.Price.String(), o.Size.String())
	if err != nil {
		o.Status = domain.OrderError
		o.ErrorMessage = err.Error()
		_ = m.st.UpdateOrderStatus(ctx, o.ID, domain.OrderError, "", err.Error())
		return o, err
	}
	if !result.accepted {
		o.Status = domain.OrderRejected
		o.ErrorMessage = result.errorMessage
		_ = m.st.UpdateOrderStatus(ctx, o.ID, domain.OrderRejected, "", result.errorMessage)
		return o, nil
	}

	o.Status = domain.OrderOpen
	o.VenueOrderID = result.orderID
	if err := m.st.UpdateOrderStatus(ctx, o.ID, domain.OrderOpen, result.orderID, ""); err != nil {
		return o, err
	}
	return o, nil
}

// persistPending runs the insert inside its own transaction from the store's
// serialized transaction helper. A prior risk-gate read is not part of that
// transaction; callers going through risk.Gate.EvaluateAndSubmit are
// serialized by the gate's mutex instead.
func (m *Module) persistPending(ctx context.Context, o domain.Order) (uint, error) {
	var id uint
	err := m.st.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		id, err = store.InsertPendingOrderTx(tx, o)
		return err
	})
	return id, err
}

// Cancel cancels a single order by its local record ID.
func (m *Module) Cancel(ctx context.Context, orderID uint) error {
	o, err := m.st.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.VenueOrderID != "" && m.client.HasCredentials() {
		if err := m.client.cancel(ctx, o.VenueOrderID); err != nil {
			return err
		}
	}
	return m.st.MarkCancelled(ctx, orderID)
}

// CancelAll cancels every pending or open order, used on shutdown (§5, T4).
func (m *Module) CancelAll(ctx context.Context) error {
	orders, err := m.st.OrdersByStatus(ctx, domain.OrderPending, domain.OrderOpen)
	if err != nil {
		return err
	}
	var firstErr error
	for _, o := range orders {
		if err := m.Cancel(ctx, o.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OrderValue is the fee breakdown CalculateOrderValue returns.
type OrderValue struct {
	Gross   decimal.Decimal
	Fee     decimal.Decimal
	Net     decimal.Decimal
	FeeRate decimal.Decimal
}

// CalculateOrderValue applies the fee model named in §4.5: maker 0%, taker
// 2%. It is not consulted at placement time, which always submits a
// marketable (taker) limit at the quoted price; its Fee is what the simulated
// fill paths pass to the Position Manager's ApplyFill.
func CalculateOrderValue(price, size decimal.Decimal, isMaker bool) OrderValue {
	gross := price.Mul(size)
	feeRate := decimal.NewFromFloat(0.02)
	if isMaker {
		feeRate = decimal.Zero
	}
	fee := gross.Mul(feeRate)
	return OrderValue{Gross: gross, Fee: fee, Net: gross.Sub(fee), FeeRate: feeRate}
}
