// Package api is the admin HTTP surface named in §6: read-only status,
// position, PnL, risk, and order endpoints plus the operator actions
// (bot-state transition, breaker reset) that the admin needs without
// touching the database directly. Out of the core trading pipeline's scope
// (§1 Non-goals), but carried the same way the teacher carries its own
// dashboard API — grounded on its server.go for the mux/handler/writeJSON
// shape, trimmed of the grant-review and coaching-report narrative that had
// no equivalent concept here.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateStore is the subset of *store.Store the admin surface reads and
// writes through — the same seam-by-interface the teacher's AppState gave
// its Server, narrowed to the State Store's own methods so this package can
// be exercised against a mock instead of a live database.
type StateStore interface {
	CurrentBotState(ctx context.Context) (domain.BotStateValue, error)
	TransitionBotState(ctx context.Context, value domain.BotStateValue, actor, reason string) error
	AnyTripped(ctx context.Context) (bool, string, error)
	Breakers(ctx context.Context) ([]domain.CircuitBreaker, error)
	ResetBreaker(ctx context.Context, name, actor string) error
	OpenPositions(ctx context.Context) ([]domain.Position, error)
	DailyPnLFor(ctx context.Context, t time.Time) (domain.DailyPnL, error)
	OrdersByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error)
	RecordHealthCheck(ctx context.Context, component string, healthy bool, detail string) error
}

// RiskGate is the subset of *risk.Gate the admin surface reports on.
type RiskGate interface {
	InCooldown() bool
	CooldownRemaining() time.Duration
}

// KPIProvider exposes the operational counters app.App collects.
type KPIProvider interface {
	KPISnapshot() map[string]any
}

// BuilderProvider exposes builder volume data (nil if builder tracking is disabled).
type BuilderProvider interface {
	DailyVolumeJSON() interface{}
	LeaderboardJSON() interface{}
	LastSync() time.Time
}

// Server is the admin HTTP API. Grounded on the teacher's server.go for the
// mux/handler/writeJSON shape and its interface-seamed dependencies, trimmed
// of the grant-review and coaching-report narrative that had no equivalent
// concept here.
type Server struct {
	httpServer *http.Server
	st         StateStore
	gate       RiskGate
	kpi        KPIProvider
	builder    BuilderProvider
	startedAt  time.Time
}

// NewServer creates a new API server bound to addr. builder may be nil when
// builder-volume tracking is disabled.
func NewServer(addr string, st StateStore, gate RiskGate, kpi KPIProvider, builder BuilderProvider) *Server {
	s := &Server{
		st:        st,
		gate:      gate,
		kpi:       kpi,
		builder:   builder,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/ready", s.handleReady)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/pnl", s.handlePnL)
	mux.HandleFunc("/api/risk", s.handleRisk)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/builder", s.handleBuilder)
	mux.HandleFunc("/api/bot-state", s.handleBotState)
	mux.HandleFunc("/api/breakers/reset", s.handleResetBreaker)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	log.Printf("api server listening on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("api server: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GET /api/health — liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"ok":       true,
		"uptime_s": time.Since(s.startedAt).Seconds(),
	})
}

// GET /api/ready — readiness probe: the database must be reachable and the
// bot state must not be STOPPED.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	state, err := s.st.CurrentBotState(r.Context())
	ready := err == nil && state != domain.StateStopped
	resp := map[string]interface{}{
		"ready":     ready,
		"bot_state": string(state),
		"uptime_s":  time.Since(s.startedAt).Seconds(),
	}
	if err != nil {
		resp["reason"] = err.Error()
	} else if !ready {
		resp["reason"] = "bot_state_stopped"
	}
	detail := ""
	if v, ok := resp["reason"]; ok {
		detail = v.(string)
	}
	_ = s.st.RecordHealthCheck(r.Context(), "api.ready", ready, detail)
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	s.writeJSON(w, resp)
}

// GET /api/status — overall system status: bot state, breakers, and the
// operational counters app.App's KPI collector tracks.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := s.st.CurrentBotState(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tripped, name, err := s.st.AnyTripped(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := map[string]interface{}{
		"bot_state":       string(state),
		"breaker_tripped": tripped,
		"in_cooldown":     s.gate.InCooldown(),
		"uptime_s":        time.Since(s.startedAt).Seconds(),
	}
	if tripped {
		resp["tripped_breaker"] = name
	}
	if s.kpi != nil {
		resp["kpi"] = s.kpi.KPISnapshot()
	}
	s.writeJSON(w, resp)
}

// GET /api/positions — currently open positions.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.st.OpenPositions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]interface{}{"positions": positions})
}

// GET /api/pnl — today's realised PnL ledger.
func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	daily, err := s.st.DailyPnLFor(r.Context(), time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, daily)
}

// GET /api/risk — named breakers and cooldown state.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	breakers, err := s.st.Breakers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"breakers":           breakers,
		"in_cooldown":        s.gate.InCooldown(),
		"cooldown_remaining": s.gate.CooldownRemaining().Seconds(),
	})
}

// GET /api/orders — currently open (non-terminal) orders.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.st.OrdersByStatus(r.Context(),
		domain.OrderPending, domain.OrderOpen, domain.OrderPartiallyFilled, domain.OrderSimulated)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]interface{}{"orders": orders})
}

// GET /api/builder — builder-volume tracker snapshot (empty if disabled).
func (s *Server) handleBuilder(w http.ResponseWriter, _ *http.Request) {
	if s.builder == nil {
		s.writeJSON(w, map[string]interface{}{"configured": false})
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"configured":    true,
		"daily_volume":  s.builder.DailyVolumeJSON(),
		"leaderboard":   s.builder.LeaderboardJSON(),
		"last_sync_utc": s.builder.LastSync(),
	})
}

// POST /api/bot-state — transition the single logical bot state (§4.4),
// the one administrative lever this surface exposes for starting, pausing,
// or stopping trading.
func (s *Server) handleBotState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Value  string `json:"value"`
		Actor  string `json:"actor"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.st.TransitionBotState(r.Context(), domain.BotStateValue(req.Value), req.Actor, req.Reason); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]interface{}{"ok": true})
}

// POST /api/breakers/reset — clear a tripped breaker. §4.4 requires this to
// be an explicit human action for daily_loss_limit and
// reconciliation_mismatch; the Risk Gate itself never calls this.
func (s *Server) handleResetBreaker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.st.ResetBreaker(r.Context(), req.Name, req.Actor); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]interface{}{"ok": true})
}
