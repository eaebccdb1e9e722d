// Package api provides the HTTP API for running crisis-negotiation games.
// GET endpoints are public (read-only observation).
// POST endpoints that create work are rate-limited; scenario upload and
// batch runs additionally require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/brink-sub001/internal/entropy"
	"github.com/kuitang/brink-sub001/internal/game"
	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/persistence"
	"github.com/kuitang/brink-sub001/internal/scenario"
	"github.com/kuitang/brink-sub001/internal/sim"
)

const maxUploadBytes = 1 << 20

// Server serves games over HTTP. Live engines are held in memory; the
// store keeps the durable record of every turn.
type Server struct {
	Store    *persistence.DB
	Params   params.Params
	Port     int
	AdminKey string // Bearer token for admin POST endpoints. Empty = disabled.

	mu        sync.Mutex
	games     map[string]*session
	scenarios map[string]*scenario.Scenario
}

// session is one live game. The engine is single-threaded; the session
// lock serializes submissions for it.
type session struct {
	mu     sync.Mutex
	id     string
	seed   int64
	scn    string
	engine *game.Engine
}

// Handler assembles the route table. Exposed separately from Start so
// tests can drive the API without binding a port.
func (s *Server) Handler() http.Handler {
	s.games = make(map[string]*session)
	s.scenarios = map[string]*scenario.Scenario{}
	def := scenario.Default()
	s.scenarios[def.Name] = def

	createLimiter := NewRateLimiter(60, time.Hour)
	batchLimiter := NewRateLimiter(6, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/v1/reports", s.handleReports)
	mux.HandleFunc("/api/v1/game/", s.handleGameRoutes)

	// Game lifecycle (POST).
	mux.HandleFunc("/api/v1/games", RateLimitMiddleware(createLimiter, s.handleCreateGame))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/scenarios/upload", s.adminOnly(s.handleUploadScenario))
	mux.HandleFunc("/api/v1/batch", s.adminOnly(RateLimitMiddleware(batchLimiter, s.handleBatch)))

	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	handler := s.Handler()
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	if s.AdminKey == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// submissionStatus maps engine errors to HTTP statuses. Validation errors
// are the caller's to fix; a finished game is a conflict.
func submissionStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrOfferPending):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnknownAction):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	live := 0
	for _, sess := range s.games {
		if sess.engine.Ending() == nil {
			live++
		}
	}
	total := len(s.games)
	scenarios := len(s.scenarios)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"live_games":  live,
		"total_games": total,
		"scenarios":   scenarios,
	})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Turns       int    `json:"scheduled_turns"`
		Actions     int    `json:"actions"`
	}
	out := make([]entry, 0, len(s.scenarios))
	for _, scn := range s.scenarios {
		out = append(out, entry{
			Name:        scn.Name,
			Description: scn.Description,
			Turns:       len(scn.Schedule),
			Actions:     len(scn.Actions),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeJSON(w, http.StatusOK, []sim.Report{})
		return
	}
	reports, err := s.Store.RecentReports(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

type createGameRequest struct {
	Scenario string `json:"scenario"`
	Seed     *int64 `json:"seed,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Scenario == "" {
		req.Scenario = scenario.Default().Name
	}

	s.mu.Lock()
	scn, ok := s.scenarios[req.Scenario]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown scenario %q", req.Scenario))
		return
	}

	seed := entropy.MustSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	eng, err := game.New(scn, s.Params, entropy.NewStream(seed))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := &session{
		id:     uuid.NewString(),
		seed:   seed,
		scn:    scn.Name,
		engine: eng,
	}
	s.mu.Lock()
	s.games[sess.id] = sess
	s.mu.Unlock()

	if s.Store != nil {
		if err := s.Store.CreateGame(sess.id, scn.Name, seed, eng.State()); err != nil {
			slog.Error("persist game failed", "game", sess.id, "error", err)
		}
	}

	slog.Info("game created", "game", sess.id, "scenario", scn.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       sess.id,
		"scenario": scn.Name,
		"state":    eng.State(),
	})
}

// handleGameRoutes dispatches /api/v1/game/{id}[/...] paths.
func (s *Server) handleGameRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/game/")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		http.Error(w, "game id required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	sess, ok := s.games[parts[0]]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown game %q", parts[0]))
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}
	switch sub {
	case "":
		s.handleGameState(w, r, sess)
	case "history":
		s.handleGameHistory(w, r, sess)
	case "turn":
		s.handleTurn(w, r, sess)
	case "settlement":
		s.handleSettlement(w, r, sess)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp := map[string]any{
		"id":       sess.id,
		"scenario": sess.scn,
		"state":    sess.engine.State(),
		"act":      sess.engine.State().Act(s.Params),
	}
	if ending := sess.engine.Ending(); ending != nil {
		resp["ending"] = ending
	}
	if pending := sess.engine.Pending(); pending != nil {
		resp["pending_offer"] = pending
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.mu.Lock()
	history := sess.engine.History()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, history)
}

type turnRequest struct {
	ActionA string `json:"action_a"`
	ActionB string `json:"action_b"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req turnRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	actionA, err := sess.engine.Action(req.ActionA)
	if err != nil {
		writeError(w, submissionStatus(err), err)
		return
	}
	actionB, err := sess.engine.Action(req.ActionB)
	if err != nil {
		writeError(w, submissionStatus(err), err)
		return
	}

	record, ending, err := sess.engine.SubmitActions(actionA, actionB)
	if err != nil {
		writeError(w, submissionStatus(err), err)
		return
	}

	if s.Store != nil {
		if err := s.Store.AppendTurn(sess.id, record); err != nil {
			slog.Error("persist turn failed", "game", sess.id, "turn", record.Turn, "error", err)
		}
		if ending != nil {
			if err := s.Store.FinishGame(sess.id, *ending); err != nil {
				slog.Error("persist ending failed", "game", sess.id, "error", err)
			}
		}
	}

	resp := map[string]any{
		"record": record,
		"state":  sess.engine.State(),
	}
	if ending != nil {
		resp["ending"] = ending
	}
	writeJSON(w, http.StatusOK, resp)
}

type settlementRequest struct {
	Op        string        `json:"op"`   // "zone", "propose" or "respond"
	Side      string        `json:"side"` // "a" or "b"
	VP        int           `json:"vp,omitempty"`
	Final     bool          `json:"final,omitempty"`
	Response  game.Response `json:"response,omitempty"`
	CounterVP int           `json:"counter_vp,omitempty"`
}

func parseSide(s string) (game.Side, error) {
	switch s {
	case "a":
		return game.SideA, nil
	case "b":
		return game.SideB, nil
	default:
		return game.SideA, fmt.Errorf("side must be \"a\" or \"b\", got %q", s)
	}
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req settlementRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch req.Op {
	case "zone":
		zone, err := sess.engine.SuggestOffer(side)
		if err != nil {
			writeError(w, submissionStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, zone)

	case "propose":
		prop, err := sess.engine.Propose(side, req.VP, req.Final)
		if err != nil {
			writeError(w, submissionStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"offer": prop})

	case "respond":
		ending, counter, err := sess.engine.Respond(side, req.Response, req.CounterVP)
		if err != nil {
			writeError(w, submissionStatus(err), err)
			return
		}
		resp := map[string]any{}
		if ending != nil {
			resp["ending"] = ending
			if s.Store != nil {
				if err := s.Store.FinishGame(sess.id, *ending); err != nil {
					slog.Error("persist ending failed", "game", sess.id, "error", err)
				}
			}
		}
		if counter != nil {
			resp["counter"] = counter
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("op must be zone, propose or respond, got %q", req.Op))
	}
}

func (s *Server) handleUploadScenario(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	scn, err := scenario.ParseJSON(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.mu.Lock()
	s.scenarios[scn.Name] = scn
	s.mu.Unlock()

	slog.Info("scenario uploaded", "name", scn.Name, "turns", len(scn.Schedule))
	writeJSON(w, http.StatusCreated, map[string]string{"name": scn.Name})
}

type batchRequest struct {
	Scenario  string `json:"scenario"`
	Games     int    `json:"games"`
	Seed      int64  `json:"seed"`
	Workers   int    `json:"workers"`
	StrategyA string `json:"strategy_a"`
	StrategyB string `json:"strategy_b"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	s.mu.Lock()
	scn, ok := s.scenarios[req.Scenario]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown scenario %q", req.Scenario))
		return
	}

	stratA, ok := sim.ByName(req.StrategyA)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown strategy %q", req.StrategyA))
		return
	}
	stratB, ok := sim.ByName(req.StrategyB)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown strategy %q", req.StrategyB))
		return
	}
	if req.Games <= 0 || req.Games > 100000 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("games must be in [1,100000], got %d", req.Games))
		return
	}

	report, err := sim.Run(sim.Config{
		Scenario:  scn,
		Params:    s.Params,
		Games:     req.Games,
		Seed:      req.Seed,
		Workers:   req.Workers,
		StrategyA: stratA,
		StrategyB: stratB,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.Store != nil {
		if err := s.Store.SaveReport(report); err != nil {
			slog.Error("persist report failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, report)
}
