package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"spellstreak/internal/clock"
	"spellstreak/internal/database"
	"spellstreak/internal/match"
	"spellstreak/internal/repository"
	"spellstreak/internal/security"
	"spellstreak/internal/service"
)

// newTestServer wires the full API against a throwaway SQLite database,
// the same way the server entrypoint does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	clk := clock.System{}
	hub := match.NewHub()
	tokens := security.NewTokenManager("test-secret", time.Hour)
	authService := service.NewAuthService(repository.NewPlayerRepository(db), tokens)
	reviewService := service.NewReviewService(clk, repository.NewHistoryRepository(db))
	matchService := service.NewMatchService(repository.NewRoomRepository(db, hub), repository.NewWordRepository(db), clk)
	emailService, err := service.NewEmailService(t.Context(), "", "", "")
	if err != nil {
		t.Fatal(err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	mw := NewMiddleware(authService, security.NewRateLimiter(100, time.Minute))
	authHandler := NewAuthHandler(authService, validate)
	reviewHandler := NewReviewHandler(reviewService, validate)
	matchHandler := NewMatchHandler(matchService, emailService, validate)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/review/attempts", mw.RequireAuth(reviewHandler.RecordAttempt))
	mux.HandleFunc("GET /api/review/queue", mw.RequireAuth(reviewHandler.ReviewQueue))
	mux.HandleFunc("POST /api/rooms", mw.RequireAuth(matchHandler.CreateRoom))
	mux.HandleFunc("POST /api/rooms/join", mw.RequireAuth(matchHandler.JoinRoom))
	mux.HandleFunc("GET /api/rooms/{code}", mw.RequireAuth(matchHandler.GetRoom))
	mux.HandleFunc("POST /api/rooms/{code}/start", mw.RequireAuth(matchHandler.StartMatch))
	mux.HandleFunc("POST /api/rooms/{code}/answer", mw.RequireAuth(matchHandler.SubmitAnswer))
	mux.HandleFunc("POST /api/rooms/{code}/invite", mw.RequireAuth(matchHandler.Invite))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func register(t *testing.T, srv *httptest.Server, email, name string) (uid, token string) {
	t.Helper()
	var resp struct {
		UID   string `json:"uid"`
		Token string `json:"token"`
	}
	status := doJSON(t, srv, "POST", "/api/auth/register", "", map[string]string{
		"email":       email,
		"password":    "correct horse",
		"displayName": name,
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d", status)
	}
	return resp.UID, resp.Token
}

func TestAPIRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/rooms", "/api/review/attempts"} {
		status := doJSON(t, srv, "POST", path, "", map[string]string{}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("POST %s without token = %d, want 401", path, status)
		}
	}

	status := doJSON(t, srv, "POST", "/api/rooms", "not-a-token", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", status)
	}
}

func TestReviewFlow(t *testing.T) {
	srv := newTestServer(t)
	_, token := register(t, srv, "ada@example.com", "Ada")

	var record struct {
		Word string `json:"word"`
		Box  int    `json:"box"`
	}
	status := doJSON(t, srv, "POST", "/api/review/attempts", token, map[string]interface{}{
		"word":           "Because",
		"category":       "tricky",
		"correct":        false,
		"responseTimeMs": 1200,
		"typed":          "becuase",
	}, &record)
	if status != http.StatusOK {
		t.Fatalf("record attempt = %d", status)
	}
	if record.Word != "because" || record.Box != 0 {
		t.Errorf("record = %+v, want because in box 0", record)
	}

	var queue struct {
		Queue []struct {
			Word string `json:"word"`
		} `json:"queue"`
	}
	if status := doJSON(t, srv, "GET", "/api/review/queue", token, nil, &queue); status != http.StatusOK {
		t.Fatalf("queue = %d", status)
	}
	if len(queue.Queue) != 1 || queue.Queue[0].Word != "because" {
		t.Errorf("queue = %+v, want [because]", queue.Queue)
	}
}

func TestMatchFlowHidesWords(t *testing.T) {
	srv := newTestServer(t)
	hostUID, hostToken := register(t, srv, "ada@example.com", "Ada")
	_, guestToken := register(t, srv, "grace@example.com", "Grace")

	var created struct {
		RoomCode string `json:"roomCode"`
		HostUID  string `json:"hostUid"`
		Status   string `json:"status"`
	}
	if status := doJSON(t, srv, "POST", "/api/rooms", hostToken, nil, &created); status != http.StatusCreated {
		t.Fatalf("create room = %d", status)
	}
	if created.HostUID != hostUID || created.Status != "waiting" {
		t.Errorf("created = %+v", created)
	}

	if status := doJSON(t, srv, "POST", "/api/rooms/join", guestToken, map[string]string{
		"code": strings.ToLower(created.RoomCode),
	}, nil); status != http.StatusOK {
		t.Fatalf("join (case-insensitive code) = %d", status)
	}

	var started map[string]interface{}
	path := fmt.Sprintf("/api/rooms/%s/start", created.RoomCode)
	if status := doJSON(t, srv, "POST", path, hostToken, nil, &started); status != http.StatusOK {
		t.Fatalf("start = %d", status)
	}
	if started["status"] != "playing" {
		t.Errorf("status = %v, want playing", started["status"])
	}

	// The response carries the round's options but never the answer key.
	if _, leaked := started["words"]; leaked {
		t.Error("response leaks the full word list")
	}
	round, ok := started["round"].(map[string]interface{})
	if !ok {
		t.Fatal("playing response missing the current round view")
	}
	if _, leaked := round["correctIndex"]; leaked {
		t.Error("round view leaks the correct option index")
	}
	if _, leaked := round["word"]; leaked {
		t.Error("round view leaks the canonical word")
	}
	options, ok := round["options"].([]interface{})
	if !ok || len(options) == 0 {
		t.Fatalf("round view options = %v", round["options"])
	}

	// A wrong guess still records and returns the player's result.
	var afterAnswer struct {
		Players map[string]struct {
			Answered bool  `json:"answered"`
			Results  []int `json:"results"`
		} `json:"players"`
	}
	answerPath := fmt.Sprintf("/api/rooms/%s/answer", created.RoomCode)
	status := doJSON(t, srv, "POST", answerPath, hostToken, map[string]interface{}{
		"round":    0,
		"spelling": "definitely-wrong",
	}, &afterAnswer)
	if status != http.StatusOK {
		t.Fatalf("answer = %d", status)
	}
	if !afterAnswer.Players[hostUID].Answered {
		t.Error("host not marked answered after submitting")
	}

	// Only the host may start, and a running match cannot be restarted.
	if status := doJSON(t, srv, "POST", path, guestToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("guest start = %d, want 403", status)
	}
	if status := doJSON(t, srv, "POST", path, hostToken, nil, nil); status != http.StatusConflict {
		t.Errorf("restart = %d, want 409 (already started)", status)
	}

	var invite map[string]string
	invitePath := fmt.Sprintf("/api/rooms/%s/invite", created.RoomCode)
	status = doJSON(t, srv, "POST", invitePath, hostToken, map[string]string{
		"email": "friend@example.com",
	}, &invite)
	if status != http.StatusOK || invite["status"] != "sent" {
		t.Errorf("invite = %d %v, want 200 sent", status, invite)
	}
}
