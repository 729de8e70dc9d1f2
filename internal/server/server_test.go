package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/streek/internal/config"
	"github.com/dukerupert/streek/internal/database"
	"github.com/dukerupert/streek/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		Port:            8080,
		DBPath:          database.MemoryPath,
		LogLevel:        "info",
		LogFormat:       "text",
		PointsSource:    "table",
		SyncHistory:     true,
		Seed:            true,
		ReminderHour:    -1,
		RateLimit:       0,
		RateBurst:       30,
		ShutdownTimeout: 5 * time.Second,
	}
}

func setupServer(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := New(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv.Router()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := setupServer(t, testConfig())
	rec := do(t, h, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupServer(t, testConfig())
	do(t, h, "GET", "/api/challenges", nil)

	rec := do(t, h, "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("missing http_requests_total")
	}
}

func TestMetricsBasicAuth(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsUser, cfg.MetricsPassword = "ops", "pw"
	h := setupServer(t, cfg)

	if rec := do(t, h, "GET", "/metrics", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCatalog(t *testing.T) {
	h := setupServer(t, testConfig())
	rec := do(t, h, "GET", "/api/catalog", nil)
	got := decode[map[string]json.RawMessage](t, rec)

	for _, key := range []string{"activity_types", "frequencies", "activity_points", "date_ranges", "default_range"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing %q", key)
		}
	}
}

func TestChallengeFlow(t *testing.T) {
	h := setupServer(t, testConfig())

	list := decode[[]model.Challenge](t, do(t, h, "GET", "/api/challenges", nil))
	if len(list) != 3 {
		t.Fatalf("seeded challenges = %d, want 3", len(list))
	}

	rec := do(t, h, "POST", "/api/challenges", map[string]string{"activity_type": "Swimming"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing frequency: status = %d, want 400", rec.Code)
	}
	if msg := decode[map[string]string](t, rec)["error"]; msg != "please select both activity type and frequency" {
		t.Errorf("error = %q", msg)
	}

	rec = do(t, h, "POST", "/api/challenges", map[string]string{
		"activity_type": "Swimming", "frequency": "Custom", "custom_frequency": "Twice a week",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	created := decode[model.Challenge](t, rec)
	if created.Frequency != "Twice a week" || created.Streak != 0 {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, h, "POST", "/api/challenges/"+created.ID+"/complete", map[string]any{"proof_uri": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no proof: status = %d, want 400", rec.Code)
	}

	rec = do(t, h, "POST", "/api/challenges/"+created.ID+"/complete", map[string]any{"proof_uri": "file:///p.jpg", "satisfied": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status = %d: %s", rec.Code, rec.Body.String())
	}
	var completion struct {
		Applied   bool            `json:"applied"`
		Message   string          `json:"message"`
		Challenge model.Challenge `json:"challenge"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&completion); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !completion.Applied || completion.Challenge.Streak != 1 || completion.Message != "Great job! Your streak is now 1 days." {
		t.Errorf("completion = %+v", completion)
	}

	rec = do(t, h, "POST", "/api/challenges/missing/complete", map[string]any{"proof_uri": "p"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestChallengesToday(t *testing.T) {
	h := setupServer(t, testConfig())
	do(t, h, "POST", "/api/challenges/1/complete", map[string]any{"proof_uri": "p"})

	rec := do(t, h, "GET", "/api/challenges/today", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Schedule string `json:"schedule"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != "1" || list[0].Status != "completed" || list[0].Schedule != "Every day" {
		t.Errorf("first = %+v", list[0])
	}
}

func TestCompletionSyncsHistory(t *testing.T) {
	h := setupServer(t, testConfig())

	before := decode[struct {
		Stats struct {
			TotalCount int `json:"total_count"`
		} `json:"stats"`
	}](t, do(t, h, "GET", "/api/history?range=Last+7+Days", nil))

	do(t, h, "POST", "/api/challenges/2/complete", map[string]any{"proof_uri": "p"})

	rec := do(t, h, "GET", "/api/history?range=Last+7+Days&activity=Gym+Workout", nil)
	var after struct {
		Records []model.ActivityRecord `json:"records"`
		Stats   struct {
			TotalCount int `json:"total_count"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(after.Records) == 0 {
		t.Fatal("no Gym Workout records")
	}
	if last := after.Records[len(after.Records)-1]; !last.Completed || last.Points != 15 {
		t.Errorf("synced record = %+v, want completed with 15 points", last)
	}

	all := decode[struct {
		Stats struct {
			TotalCount int `json:"total_count"`
		} `json:"stats"`
	}](t, do(t, h, "GET", "/api/history?range=Last+7+Days", nil))
	if all.Stats.TotalCount != before.Stats.TotalCount+1 {
		t.Errorf("total = %d, want %d", all.Stats.TotalCount, before.Stats.TotalCount+1)
	}
}

func TestHistory(t *testing.T) {
	h := setupServer(t, testConfig())

	rec := do(t, h, "GET", "/api/history?range=Last+30+Days", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Records []model.ActivityRecord `json:"records"`
		Stats   struct {
			CompletedCount int `json:"completed_count"`
			TotalCount     int `json:"total_count"`
			Rate           int `json:"completion_rate_percent"`
		} `json:"stats"`
		Activities []string `json:"activities"`
		Weekly     []struct {
			Label string `json:"label"`
		} `json:"weekly"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stats.TotalCount != 10 || got.Stats.CompletedCount != 7 || got.Stats.Rate != 70 {
		t.Errorf("stats = %+v, want 7/10 70%%", got.Stats)
	}
	if len(got.Activities) != 3 || len(got.Weekly) != 7 {
		t.Errorf("activities=%v weekly=%d", got.Activities, len(got.Weekly))
	}

	if rec := do(t, h, "GET", "/api/history?range=Forever", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown range: status = %d, want 400", rec.Code)
	}

	rec = do(t, h, "POST", "/api/history", map[string]any{"name": "Cycling", "date": time.Now().Format(model.DateLayout), "completed": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create record: status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := decode[model.ActivityRecord](t, rec); rec.Points != 10 {
		t.Errorf("points = %d, want catalog value 10", rec.Points)
	}

	walk := map[string]any{"id": "walk-1", "name": "Walking", "date": time.Now().Format(model.DateLayout), "completed": true}
	if rec := do(t, h, "POST", "/api/history", walk); rec.Code != http.StatusCreated {
		t.Fatalf("create walk: status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, "POST", "/api/history", walk)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate id: status = %d, want 409", rec.Code)
	}
}

func TestRewards(t *testing.T) {
	h := setupServer(t, testConfig())

	rec := do(t, h, "GET", "/api/points?range=Last+7+Days", nil)
	if got := decode[map[string]any](t, rec)["points"]; got != float64(350) {
		t.Errorf("points = %v, want 350", got)
	}
	if rec := do(t, h, "GET", "/api/points?range=nope", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown range: status = %d, want 400", rec.Code)
	}

	rec = do(t, h, "POST", "/api/rewards/1/claim", map[string]int{"balance": 499})
	res := decode[map[string]any](t, rec)
	if res["applied"] != false || res["balance"] != float64(499) {
		t.Errorf("short claim = %v", res)
	}

	rec = do(t, h, "POST", "/api/rewards/1/claim", map[string]int{"balance": 500})
	res = decode[map[string]any](t, rec)
	if res["applied"] != true || res["balance"] != float64(0) {
		t.Errorf("claim = %v", res)
	}

	rewards := decode[[]model.Reward](t, do(t, h, "GET", "/api/rewards", nil))
	if !rewards[0].Claimed {
		t.Error("reward 1 should be claimed")
	}

	if rec := do(t, h, "POST", "/api/rewards/99/claim", map[string]int{"balance": 5000}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown reward: status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/rewards/2/claim", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing balance: status = %d, want 400", rec.Code)
	}
}

func TestProfileAndTheme(t *testing.T) {
	h := setupServer(t, testConfig())

	p := decode[model.Profile](t, do(t, h, "GET", "/api/profile", nil))
	if p.Name != "Alex Johnson" || p.Settings.DarkMode {
		t.Fatalf("profile = %+v", p)
	}

	rec := do(t, h, "POST", "/api/profile/settings/darkMode/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d", rec.Code)
	}
	theme := decode[map[string]any](t, do(t, h, "GET", "/api/theme", nil))
	if theme["is_dark_mode"] != true {
		t.Errorf("theme = %v, want dark", theme)
	}

	do(t, h, "POST", "/api/theme/toggle", nil)
	p = decode[model.Profile](t, do(t, h, "GET", "/api/profile", nil))
	if p.Settings.DarkMode {
		t.Error("profile should follow the theme back to light")
	}

	if rec := do(t, h, "POST", "/api/profile/settings/volume/toggle", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown setting: status = %d, want 400", rec.Code)
	}

	p.Name = ""
	if rec := do(t, h, "PUT", "/api/profile", p); rec.Code != http.StatusBadRequest {
		t.Errorf("empty name: status = %d, want 400", rec.Code)
	}
	p.Name = "Alex J."
	rec = do(t, h, "PUT", "/api/profile", p)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d: %s", rec.Code, rec.Body.String())
	}

	ach := decode[struct {
		Progress struct {
			Earned  int `json:"earned"`
			Total   int `json:"total"`
			Percent int `json:"percent"`
		} `json:"progress"`
	}](t, do(t, h, "GET", "/api/achievements", nil))
	if ach.Progress.Earned != 3 || ach.Progress.Total != 5 || ach.Progress.Percent != 60 {
		t.Errorf("progress = %+v", ach.Progress)
	}

	if rec := do(t, h, "GET", "/api/profile/share", nil); rec.Code != http.StatusOK {
		t.Errorf("share: status = %d", rec.Code)
	}
	do(t, h, "POST", "/api/profile/settings/socialSharing/toggle", nil)
	if rec := do(t, h, "GET", "/api/profile/share", nil); rec.Code != http.StatusForbidden {
		t.Errorf("share disabled: status = %d, want 403", rec.Code)
	}
}

func TestPushRoutes(t *testing.T) {
	h := setupServer(t, testConfig())

	if rec := do(t, h, "GET", "/api/push/vapid-key", nil); rec.Code != http.StatusNotFound {
		t.Errorf("vapid key without config: status = %d, want 404", rec.Code)
	}

	rec := do(t, h, "POST", "/api/push/subscribe", map[string]string{
		"endpoint": "https://push.example/abc", "p256dh": "k", "auth": "a", "device_name": "phone",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("subscribe: status = %d: %s", rec.Code, rec.Body.String())
	}
	sub := decode[model.PushSubscription](t, rec)

	subs := decode[[]model.PushSubscription](t, do(t, h, "GET", "/api/push/subscriptions", nil))
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}

	if rec := do(t, h, "DELETE", "/api/push/subscriptions/"+jsonNumber(sub.ID), nil); rec.Code != http.StatusNoContent {
		t.Errorf("unsubscribe: status = %d, want 204", rec.Code)
	}
	if rec := do(t, h, "POST", "/api/push/subscribe", map[string]string{"endpoint": "https://x"}); rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete subscribe: status = %d, want 400", rec.Code)
	}
}

func TestBackupRoutesDisabled(t *testing.T) {
	h := setupServer(t, testConfig())

	status := decode[map[string]any](t, do(t, h, "GET", "/api/backups/status", nil))
	if status["state"] != "disabled" {
		t.Errorf("state = %v, want disabled", status["state"])
	}
	if rec := do(t, h, "POST", "/api/backups", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("run: status = %d, want 503", rec.Code)
	}
	list := decode[[]model.Backup](t, do(t, h, "GET", "/api/backups", nil))
	if len(list) != 0 {
		t.Errorf("backups = %v, want none", list)
	}
	if rec := do(t, h, "GET", "/api/backups?limit=0", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit, cfg.RateBurst = 1, 2
	h := setupServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(t, h, "GET", "/api/catalog", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}
	if rec := do(t, h, "GET", "/api/catalog", nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec := do(t, h, "GET", "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("health should not be rate limited: %d", rec.Code)
	}
}

func jsonNumber(n int64) string {
	data, _ := json.Marshal(n)
	return string(data)
}
