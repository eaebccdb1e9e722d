package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kuitang/brink-sub001/internal/params"
)

const testAdminKey = "test-admin-key"

func newTestHandler() http.Handler {
	s := &Server{Params: params.Defaults(), AdminKey: testAdminKey}
	return s.Handler()
}

// do runs one request against the handler and decodes the JSON response
// into out when it is non-nil.
func do(t *testing.T, h http.Handler, method, path string, body any, token string, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func createGame(t *testing.T, h http.Handler, seed int64) string {
	t.Helper()
	var resp struct {
		ID string `json:"id"`
	}
	rec := do(t, h, http.MethodPost, "/api/v1/games",
		map[string]any{"scenario": "standoff", "seed": seed}, "", &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.ID == "" {
		t.Fatal("create game returned no id")
	}
	return resp.ID
}

func playTurn(t *testing.T, h http.Handler, id, actionA, actionB string) map[string]json.RawMessage {
	t.Helper()
	var resp map[string]json.RawMessage
	rec := do(t, h, http.MethodPost, "/api/v1/game/"+id+"/turn",
		map[string]string{"action_a": actionA, "action_b": actionB}, "", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("turn %s/%s: status %d: %s", actionA, actionB, rec.Code, rec.Body.String())
	}
	return resp
}

func TestStatus(t *testing.T) {
	h := newTestHandler()
	var resp struct {
		LiveGames  int `json:"live_games"`
		TotalGames int `json:"total_games"`
		Scenarios  int `json:"scenarios"`
	}
	rec := do(t, h, http.MethodGet, "/api/v1/status", nil, "", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if resp.TotalGames != 0 || resp.Scenarios != 1 {
		t.Errorf("fresh server status = %+v", resp)
	}
}

func TestScenarioList(t *testing.T) {
	h := newTestHandler()
	var resp []struct {
		Name    string `json:"name"`
		Turns   int    `json:"scheduled_turns"`
		Actions int    `json:"actions"`
	}
	rec := do(t, h, http.MethodGet, "/api/v1/scenarios", nil, "", &resp)
	if rec.Code != http.StatusOK || len(resp) != 1 {
		t.Fatalf("status %d, %d scenarios", rec.Code, len(resp))
	}
	if resp[0].Name != "standoff" || resp[0].Turns == 0 || resp[0].Actions == 0 {
		t.Errorf("scenario entry = %+v", resp[0])
	}
}

func TestCreateGameAndPlayTurn(t *testing.T) {
	h := newTestHandler()
	id := createGame(t, h, 5)

	// A holds, B mobilizes: one-sided defection.
	resp := playTurn(t, h, id, "hold_position", "mobilize")
	var record struct {
		Turn    int    `json:"turn"`
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(resp["record"], &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Turn != 1 || record.Outcome != "CD" {
		t.Errorf("record = %+v", record)
	}

	var state struct {
		Turn      int     `json:"turn"`
		PositionB float64 `json:"position_b"`
	}
	rec := do(t, h, http.MethodGet, "/api/v1/game/"+id, nil, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get game: %d", rec.Code)
	}
	if err := json.Unmarshal(resp["state"], &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Turn != 1 || state.PositionB <= 5 {
		t.Errorf("state after CD = %+v", state)
	}

	var history []json.RawMessage
	rec = do(t, h, http.MethodGet, "/api/v1/game/"+id+"/history", nil, "", &history)
	if rec.Code != http.StatusOK || len(history) != 1 {
		t.Errorf("history: status %d, %d records", rec.Code, len(history))
	}
}

func TestCreateGameUnknownScenario(t *testing.T) {
	h := newTestHandler()
	rec := do(t, h, http.MethodPost, "/api/v1/games",
		map[string]string{"scenario": "nonexistent"}, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTurnErrors(t *testing.T) {
	h := newTestHandler()
	id := createGame(t, h, 5)

	rec := do(t, h, http.MethodPost, "/api/v1/game/"+id+"/turn",
		map[string]string{"action_a": "teleport", "action_b": "hold_position"}, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown action: status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/game/"+id+"/turn",
		map[string]string{"action_a": "offer_terms", "action_b": "hold_position"}, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("settlement action as turn: status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/game/unknown-id", nil, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown game: status = %d, want 404", rec.Code)
	}
}

func TestSettlementFlow(t *testing.T) {
	h := newTestHandler()
	id := createGame(t, h, 5)

	// Too early for offers.
	rec := do(t, h, http.MethodPost, "/api/v1/game/"+id+"/settlement",
		map[string]any{"op": "zone", "side": "a"}, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("early zone: status = %d, want 400", rec.Code)
	}

	// Five cooperative turns clear the turn gate and build stability.
	for i := 0; i < 5; i++ {
		playTurn(t, h, id, "hold_position", "hold_position")
	}

	var zone struct {
		Suggested int `json:"suggested"`
		Min       int `json:"min"`
		Max       int `json:"max"`
	}
	rec = do(t, h, http.MethodPost, "/api/v1/game/"+id+"/settlement",
		map[string]any{"op": "zone", "side": "a"}, "", &zone)
	if rec.Code != http.StatusOK {
		t.Fatalf("zone: status %d: %s", rec.Code, rec.Body.String())
	}
	// Even positions, cooperation maxed at 10: 50 + (10-5)*2.
	if zone.Suggested != 60 || zone.Min != 50 || zone.Max != 70 {
		t.Errorf("zone = %+v, want 60 [50,70]", zone)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/game/"+id+"/settlement",
		map[string]any{"op": "propose", "side": "a", "vp": 60}, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("propose: status %d: %s", rec.Code, rec.Body.String())
	}

	// A cannot answer its own offer.
	rec = do(t, h, http.MethodPost, "/api/v1/game/"+id+"/settlement",
		map[string]any{"op": "respond", "side": "a", "response": "accept"}, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("own offer: status = %d, want 400", rec.Code)
	}

	var resp struct {
		Ending struct {
			Kind string  `json:"kind"`
			VPA  float64 `json:"vp_a"`
			VPB  float64 `json:"vp_b"`
		} `json:"ending"`
	}
	rec = do(t, h, http.MethodPost, "/api/v1/game/"+id+"/settlement",
		map[string]any{"op": "respond", "side": "b", "response": "accept"}, "", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Ending.Kind != "settlement" || resp.Ending.VPA != 60 || resp.Ending.VPB != 40 {
		t.Errorf("ending = %+v", resp.Ending)
	}

	// The game is finished; further turns conflict.
	rec = do(t, h, http.MethodPost, "/api/v1/game/"+id+"/turn",
		map[string]string{"action_a": "hold_position", "action_b": "hold_position"}, "", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("turn after settlement: status = %d, want 409", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	h := newTestHandler()
	upload := `{"name":"custom","schedule":[{"matrix":"harmony"}],
		"actions":[{"name":"hold","type":"cooperative","category":"standard"}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scenarios/upload",
		bytes.NewBufferString(upload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/scenarios/upload",
		bytes.NewBufferString(upload))
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}

	// The correct key without the Bearer scheme is not a credential.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scenarios/upload",
		bytes.NewBufferString(upload))
	req.Header.Set("Authorization", testAdminKey)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("schemeless token: status = %d, want 401", rec.Code)
	}

	rec2 := do(t, h, http.MethodGet, "/api/v1/scenarios/upload", nil, testAdminKey, nil)
	if rec2.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET upload: status = %d, want 405", rec2.Code)
	}
}

func TestUploadScenarioAndCreateGame(t *testing.T) {
	h := newTestHandler()
	upload := map[string]any{
		"name":     "custom",
		"schedule": []map[string]any{{"matrix": "harmony"}},
		"actions": []map[string]any{
			{"name": "hold", "type": "cooperative", "category": "standard"},
			{"name": "push", "type": "competitive", "category": "standard", "cost": 0.3},
		},
	}

	rec := do(t, h, http.MethodPost, "/api/v1/scenarios/upload", upload, testAdminKey, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/v1/games",
		map[string]string{"scenario": "custom"}, "", nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("create from uploaded scenario: status %d: %s", rec.Code, rec.Body.String())
	}

	// Semantically invalid documents are rejected with a schema pointer.
	bad := map[string]any{
		"name":     "bad",
		"schedule": []map[string]any{{"matrix": "poker"}},
		"actions":  []map[string]any{{"name": "hold", "type": "cooperative", "category": "standard"}},
	}
	rec = do(t, h, http.MethodPost, "/api/v1/scenarios/upload", bad, testAdminKey, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad upload: status = %d, want 422", rec.Code)
	}
}

func TestBatchEndpoint(t *testing.T) {
	h := newTestHandler()

	var report struct {
		Games     int     `json:"games"`
		MeanTurns float64 `json:"mean_turns"`
	}
	rec := do(t, h, http.MethodPost, "/api/v1/batch", map[string]any{
		"scenario":   "standoff",
		"games":      5,
		"seed":       9,
		"strategy_a": "always_cooperate",
		"strategy_b": "tit_for_tat",
	}, testAdminKey, &report)
	if rec.Code != http.StatusOK {
		t.Fatalf("batch: status %d: %s", rec.Code, rec.Body.String())
	}
	if report.Games != 5 || report.MeanTurns <= 0 {
		t.Errorf("report = %+v", report)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/batch", map[string]any{
		"scenario":   "standoff",
		"games":      5,
		"strategy_a": "clairvoyant",
		"strategy_b": "tit_for_tat",
	}, testAdminKey, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown strategy: status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/batch", map[string]any{
		"scenario":   "standoff",
		"games":      0,
		"strategy_a": "always_cooperate",
		"strategy_b": "always_cooperate",
	}, testAdminKey, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero games: status = %d, want 400", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over the limit allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("separate IP shares a bucket")
	}
	if rl.RetryAfter("10.0.0.1") <= 0 {
		t.Error("exhausted bucket reports no retry delay")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	handler := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}
}
