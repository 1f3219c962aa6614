package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSummary(t *testing.T) {
	Row("summary-test", "updated")
	Row("summary-test", "updated")
	Row("summary-test", "skipped")
	Row("other-step", "updated")

	got := Summary("summary-test")

	if got["updated"] != 2 {
		t.Errorf("updated = %v, want 2", got["updated"])
	}
	if got["skipped"] != 1 {
		t.Errorf("skipped = %v, want 1", got["skipped"])
	}
	if _, ok := got["failed"]; ok {
		t.Errorf("failed should be absent, got %v", got["failed"])
	}
}

func TestSummary_UnknownStep(t *testing.T) {
	if got := Summary("never-used"); len(got) != 0 {
		t.Errorf("Summary(never-used) = %v, want empty", got)
	}
}

func TestMiddleware(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	// outside a chi router there is no route pattern
	got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "418"))
	if got != 1 {
		t.Errorf("requests counter = %v, want 1", got)
	}
}

func TestMiddleware_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/events/1", "/events/2", "/zufall/abc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/events/{id}", "200")); got != 2 {
		t.Errorf("route counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/zufall/abc", "404")); got != 0 {
		t.Errorf("raw path should not become a label, counter = %v", got)
	}
}

func TestHandler(t *testing.T) {
	Fetch("cache", "hit")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "volksfeste_fetches_total") {
		t.Error("metrics output missing volksfeste_fetches_total")
	}
}
