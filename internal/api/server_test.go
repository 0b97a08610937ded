package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
)

type mockStore struct {
	state           domain.BotStateValue
	stateErr        error
	tripped         bool
	trippedName     string
	breakers        []domain.CircuitBreaker
	positions       []domain.Position
	dailyPnL        domain.DailyPnL
	orders          []domain.Order
	resetBreakerErr error
	transitionErr   error
}

func (m *mockStore) CurrentBotState(context.Context) (domain.BotStateValue, error) {
	return m.state, m.stateErr
}
func (m *mockStore) TransitionBotState(context.Context, domain.BotStateValue, string, string) error {
	return m.transitionErr
}
func (m *mockStore) AnyTripped(context.Context) (bool, string, error) {
	return m.tripped, m.trippedName, nil
}
func (m *mockStore) Breakers(context.Context) ([]domain.CircuitBreaker, error) { return m.breakers, nil }
func (m *mockStore) ResetBreaker(context.Context, string, string) error        { return m.resetBreakerErr }
func (m *mockStore) OpenPositions(context.Context) ([]domain.Position, error)  { return m.positions, nil }
func (m *mockStore) DailyPnLFor(context.Context, time.Time) (domain.DailyPnL, error) {
	return m.dailyPnL, nil
}
func (m *mockStore) OrdersByStatus(context.Context, ...domain.OrderStatus) ([]domain.Order, error) {
	return m.orders, nil
}
func (m *mockStore) RecordHealthCheck(context.Context, string, bool, string) error { return nil }

type mockGate struct {
	cooldown  bool
	remaining time.Duration
}

func (m *mockGate) InCooldown() bool                 { return m.cooldown }
func (m *mockGate) CooldownRemaining() time.Duration { return m.remaining }

type mockKPI struct{ snapshot map[string]any }

func (m *mockKPI) KPISnapshot() map[string]any { return m.snapshot }

type mockBuilder struct {
	daily       interface{}
	leaderboard interface{}
	lastSync    time.Time
}

func (m *mockBuilder) DailyVolumeJSON() interface{} { return m.daily }
func (m *mockBuilder) LeaderboardJSON() interface{} { return m.leaderboard }
func (m *mockBuilder) LastSync() time.Time          { return m.lastSync }

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(":0", &mockStore{}, &mockGate{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ok, _ := decodeJSON(t, w)["ok"].(bool); !ok {
		t.Fatal("expected ok=true")
	}
}

func TestHandleReadyWhenStopped(t *testing.T) {
	s := NewServer(":0", &mockStore{state: domain.StateStopped}, &mockGate{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()
	s.handleReady(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandleReadyWhenRunning(t *testing.T) {
	s := NewServer(":0", &mockStore{state: domain.StateRunning}, &mockGate{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()
	s.handleReady(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHandleStatusIncludesKPISnapshot(t *testing.T) {
	st := &mockStore{state: domain.StateRunning, tripped: true, trippedName: "stale_data"}
	kpi := &mockKPI{snapshot: map[string]any{"submitted_orders_daily": 3}}
	s := NewServer(":0", st, &mockGate{cooldown: true}, kpi, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	s.handleStatus(w, req)

	resp := decodeJSON(t, w)
	if resp["bot_state"] != "RUNNING" {
		t.Fatalf("expected bot_state RUNNING, got %v", resp["bot_state"])
	}
	if resp["tripped_breaker"] != "stale_data" {
		t.Fatalf("expected tripped_breaker stale_data, got %v", resp["tripped_breaker"])
	}
	if resp["in_cooldown"] != true {
		t.Fatal("expected in_cooldown true")
	}
	kpiResp, ok := resp["kpi"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a kpi object in the response, got %T", resp["kpi"])
	}
	if kpiResp["submitted_orders_daily"].(float64) != 3 {
		t.Fatalf("expected submitted_orders_daily 3, got %v", kpiResp["submitted_orders_daily"])
	}
}

func TestHandlePositions(t *testing.T) {
	st := &mockStore{positions: []domain.Position{{ConditionID: "c1", Asset: "BTC", Size: decimal.NewFromInt(10)}}}
	s := NewServer(":0", st, &mockGate{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
	w := httptest.NewRecorder()
	s.handlePositions(w, req)

	resp := decodeJSON(t, w)
	positions, ok := resp["positions"].([]interface{})
	if !ok || len(positions) != 1 {
		t.Fatalf("expected one position, got %v", resp["positions"])
	}
}

func TestHandlePnL(t *testing.T) {
	st := &mockStore{dailyPnL: domain.DailyPnL{RealisedPnL: decimal.NewFromFloat(12.5), TradeCount: 4}}
	s := NewServer(":0", st, &mockGate{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pnl", nil)
	w := httptest.NewRecorder()
	s.handlePnL(w, req)

	resp := decodeJSON(t, w)
	if resp["trade_count"].(float64) != 4 {
		t.Fatalf("expected trade_count 4, got %v", resp["trade_count"])
	}
}

func TestHandleRisk(t *testing.T) {
	st := &mockStore{breakers: []domain.CircuitBreaker{{Name: domain.BreakerStaleData}}}
	s := NewServer(":0", st, &mockGate{cooldown: true, remaining: 30 * time.Second}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/risk", nil)
	w := httptest.NewRecorder()
	s.handleRisk(w, req)

	resp := decodeJSON(t, w)
	if resp["in_cooldown"] != true {
		t.Fatal("expected in_cooldown true")
	}
	if resp["cooldown_remaining"].(float64) != 30 {
		t.Fatalf("expected cooldown_remaining 30, got %v", resp["cooldown_remaining"])
	}
}

func TestHandleOrders(t *testing.T) {
	st := &mockStore{orders: []domain.Order{{ID: 1, Status: domain.OrderOpen}}}
	s := NewServer(":0", st, &mockGate{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()
	s.handleOrders(w, req)

	resp := decodeJSON(t, w)
	orders, ok := resp["orders"].([]interface{})
	if !ok || len(orders) != 1 {
		t.Fatalf("expected one order, got %v", resp["orders"])
	}
}

func TestHandleBuilderDisabled(t *testing.T) {
	s := NewServer(":0", &mockStore{}, &mockGate{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/builder", nil)
	w := httptest.NewRecorder()
	s.handleBuilder(w, req)

	resp := decodeJSON(t, w)
	if resp["configured"] != false {
		t.Fatal("expected configured=false when no builder tracker is wired")
	}
}

func TestHandleBuilderEnabled(t *testing.T) {
	b := &mockBuilder{daily: []int{1, 2}, leaderboard: []int{1}, lastSync: time.Now()}
	s := NewServer(":0", &mockStore{}, &mockGate{}, nil, b)
	req := httptest.NewRequest(http.MethodGet, "/api/builder", nil)
	w := httptest.NewRecorder()
	s.handleBuilder(w, req)

	resp := decodeJSON(t, w)
	if resp["configured"] != true {
		t.Fatal("expected configured=true when a builder tracker is wired")
	}
}

func TestHandleBotStateTransition(t *testing.T) {
	st := &mockStore{}
	s := NewServer(":0", st, &mockGate{}, nil, nil)

	body := `{"value":"PAUSED","actor":"operator","reason":"manual pause"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bot-state", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleBotState(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandleBotStateRejectsGet(t *testing.T) {
	s := NewServer(":0", &mockStore{}, &mockGate{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/bot-state", nil)
	w := httptest.NewRecorder()
	s.handleBotState(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestHandleResetBreaker(t *testing.T) {
	st := &mockStore{}
	s := NewServer(":0", st, &mockGate{}, nil, nil)

	body := `{"name":"stale_data","actor":"operator"}`
	req := httptest.NewRequest(http.MethodPost, "/api/breakers/reset", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handleResetBreaker(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
