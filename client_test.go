package orda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// fakeBackend imitates the vector search endpoint: every query gets a
// full page of top_k records.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query      string `json:"query"`
			TopK       int    `json:"top_k"`
			SearchType string `json:"search_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		records := make([]map[string]any, 0, req.TopK)
		for i := 0; i < req.TopK; i++ {
			records = append(records, map[string]any{
				"id":      fmt.Sprintf("doc-%d", i+1),
				"name":    fmt.Sprintf("장소 %d", i+1),
				"score":   0.95,
				"address": "제주시 조천읍",
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}))
}

func TestNew_NoBackend(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no backend URL provided")
	}
	if !strings.Contains(err.Error(), "WithBackend") {
		t.Errorf("error %q does not point at WithBackend", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithBackend("http://localhost:8000/api/v1/search").apply(cfg)
	if cfg.backendURL != "http://localhost:8000/api/v1/search" {
		t.Errorf("backendURL = %q", cfg.backendURL)
	}

	WithConnectTimeout(3 * time.Second).apply(cfg)
	if cfg.connectTimeout != 3*time.Second {
		t.Errorf("connectTimeout = %v, want 3s", cfg.connectTimeout)
	}

	WithRedisCache("localhost:6379", "secret").apply(cfg)
	if cfg.cacheAddrs[0] != "localhost:6379" {
		t.Errorf("cache addr = %q, want localhost:6379", cfg.cacheAddrs[0])
	}
	if cfg.cachePassword != "secret" {
		t.Errorf("cache password = %q, want secret", cfg.cachePassword)
	}

	WithCacheTTL(time.Minute).apply(cfg)
	if cfg.cacheTTL != time.Minute {
		t.Errorf("cacheTTL = %v, want 1m", cfg.cacheTTL)
	}

	WithRetryPolicy(10*time.Second, 5).apply(cfg)
	if cfg.baseTimeout != 10*time.Second || cfg.maxRetries != 5 {
		t.Errorf("retry policy = (%v, %d), want (10s, 5)", cfg.baseTimeout, cfg.maxRetries)
	}

	WithTopK(12).apply(cfg)
	if cfg.topK != 12 {
		t.Errorf("topK = %d, want 12", cfg.topK)
	}

	WithAnswerProvider(AnswerProvider{APIKey: "key", Model: "solar-mini"}).apply(cfg)
	if cfg.answer.APIKey != "key" || cfg.answer.Model != "solar-mini" {
		t.Errorf("answer = %+v", cfg.answer)
	}

	cfg2 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg2)
	if cfg2.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg2)
	if cfg2.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_SearchAgainstBackend(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	res, err := client.Search("흑돼지 맛집").
		Categories(Food).
		TopK(3).
		Do(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(res.Outcomes) != 1 {
		t.Fatalf("outcomes: got %d, want 1", len(res.Outcomes))
	}
	out := res.Outcomes[0]
	if out.Category != Food {
		t.Errorf("category: got %s, want %s", out.Category, Food)
	}
	if len(out.Places) != 3 {
		t.Fatalf("places: got %d, want 3", len(out.Places))
	}
	if out.Places[0].Name != "장소 1" {
		t.Errorf("first place: got %q, want 장소 1", out.Places[0].Name)
	}
	if out.Failed {
		t.Error("failed: got true, want false")
	}
	if res.AnyFailed {
		t.Error("any_failed: got true, want false")
	}
}

func TestClient_SearchAllCategoriesByDefault(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL), WithTopK(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	res, err := client.Search("가족 여행").Do(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(res.Outcomes) != 4 {
		t.Fatalf("outcomes: got %d, want 4", len(res.Outcomes))
	}
	want := []Category{Lodging, Attraction, Food, Event}
	for i, out := range res.Outcomes {
		if out.Category != want[i] {
			t.Errorf("outcome %d: got %s, want %s", i, out.Category, want[i])
		}
		if len(out.Places) != 2 {
			t.Errorf("category %s places: got %d, want 2", out.Category, len(out.Places))
		}
	}
}

func TestClient_SearchForTrip(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	res, err := client.Search("제주 여행").ForTrip("1박2일").Do(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	// Короткая поездка — по плану меньше мест на категорию.
	want := map[Category]int{Lodging: 3, Attraction: 6, Food: 5, Event: 3}
	for cat, count := range want {
		out, ok := res.Get(cat)
		if !ok {
			t.Fatalf("category %s missing", cat)
		}
		if len(out.Places) != count {
			t.Errorf("category %s places: got %d, want %d", cat, len(out.Places), count)
		}
	}
}

func TestClient_SearchInvalidCategory(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	_, err = client.Search("제주").Categories(Category("카지노")).Do(context.Background())
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestClient_SearchEmptyQuery(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	_, err = client.Search("   ").Do(context.Background())
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestClient_PingBackendDown(t *testing.T) {
	backend := fakeBackend(t)
	backend.Close() // закрыт до первого запроса

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error against closed backend")
	}
}

func TestClient_Chat_NotConfigured(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	client, err := New(WithBackend(backend.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	_, err = client.Chat(context.Background(), "일정 짜줘", "")
	if err == nil {
		t.Fatal("expected error when answer provider not configured")
	}
	if !strings.Contains(err.Error(), "WithAnswerProvider") {
		t.Errorf("error %q does not point at WithAnswerProvider", err)
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	// Close на клиенте без кэша не паникует.
	c := &Client{store: nil}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	// nil observer should not panic.
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.observeRetrieval("search", time.Now(), []CategoryOutcome{{Failed: true}}, nil)
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("search", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metrics to be registered")
	}

	// Verify operations counter has both ok and error.
	found := false
	for _, f := range families {
		if f.GetName() == "orda_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d",
					len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("orda_sdk_operations_total not found")
	}
}

func TestObserver_PartialRetrieval(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	outcomes := []CategoryOutcome{
		{Category: Food, Places: []Place{{Name: "식당"}}, Attempts: 1},
		{Category: Event, Failed: true, FailureKind: "read_timeout", Attempts: 3},
	}
	obs.observeRetrieval("search", time.Now(), outcomes, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var sawPartial, sawFailure bool
	for _, f := range families {
		switch f.GetName() {
		case "orda_sdk_operations_total":
			for _, m := range f.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "status" && l.GetValue() == "partial" {
						sawPartial = true
					}
				}
			}
		case "orda_sdk_category_failures_total":
			for _, m := range f.GetMetric() {
				labels := make(map[string]string)
				for _, l := range m.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				if labels["category"] == "event" && labels["kind"] == "read_timeout" {
					sawFailure = true
				}
			}
		}
	}
	if !sawPartial {
		t.Error("fan-out with an exhausted category must count as partial")
	}
	if !sawFailure {
		t.Error("expected event/read_timeout failure sample")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	// Проверяем что логгер не паникует при вызове.
	logger := slog.Default()
	obs, err := newObserver(logger, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}

func TestObserver_NoMetricsNoLogger(t *testing.T) {
	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	// Не должно паниковать.
	obs.observe("noop", time.Now(), nil)
}

func TestSearchMetricsRecorded(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	reg := prometheus.NewRegistry()
	client, err := New(WithBackend(backend.URL), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if _, err := client.Search("제주 맛집").Categories(Food).Do(context.Background()); err != nil {
		t.Fatalf("search: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "orda_sdk_operation_duration_seconds" {
			found = true
		}
	}
	if !found {
		t.Error("orda_sdk_operation_duration_seconds not found after search")
	}
}
