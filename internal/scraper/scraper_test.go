package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/storage"
)

func newTestScraper(t *testing.T, serverURL string, cache *storage.Cache) *Scraper {
	t.Helper()
	s, err := New(Options{
		BaseURL:  serverURL,
		Interval: time.Millisecond,
		Cache:    cache,
	})
	require.NoError(t, err)
	return s
}

func TestScraper_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
			t.Errorf("User-Agent = %q, want a browser agent", ua)
		}
		if lang := r.Header.Get("Accept-Language"); !strings.HasPrefix(lang, "de-DE") {
			t.Errorf("Accept-Language = %q", lang)
		}
		if ref := r.Header.Get("Referer"); !strings.HasSuffix(ref, "/terminkalender.php") {
			t.Errorf("Referer = %q", ref)
		}
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil)
	_, err := s.Get(context.Background(), server.URL+"/veranstaltungdetails.php?id=1")
	require.NoError(t, err)
}

func TestScraper_GetDecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html><body>Erwartete Gesch\xe4fte</body></html>"))
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil)
	page, err := s.Get(context.Background(), server.URL)
	require.NoError(t, err)

	if !strings.Contains(page, "Erwartete Geschäfte") {
		t.Errorf("page was not decoded to UTF-8: %q", page)
	}
}

func TestScraper_GetHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil)
	if _, err := s.Get(context.Background(), server.URL); err == nil {
		t.Error("Get() expected error for 404, got nil")
	}
}

func TestScraper_RefreshObtainsSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/terminkalender.php":
			http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "abc123", Path: "/"})
			w.Write([]byte("<html>Kalender</html>"))
		case "/veranstaltungdetails.php":
			c, err := r.Cookie("PHPSESSID")
			if err != nil || c.Value != "abc123" {
				w.Write([]byte("<html>Sitzung abgelaufen</html>"))
				return
			}
			w.Write([]byte(`<table><tr><td>Bundesland</td><td>Sachsen</td></tr></table>`))
		}
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil)
	ctx := context.Background()
	detailURL := server.URL + "/veranstaltungdetails.php?id=7"

	details, err := s.Details(ctx, detailURL, true)
	require.NoError(t, err)
	if len(details) != 0 {
		t.Fatalf("expected no details without session, got %v", details)
	}

	require.NoError(t, s.Refresh(ctx))

	details, err = s.Details(ctx, detailURL, true)
	require.NoError(t, err)
	if details[event.ColBundesland] != "Sachsen" {
		t.Errorf("details after refresh = %v", details)
	}
}

func TestScraper_FetchUsesCache(t *testing.T) {
	var hits int32
	page := "<html>" + strings.Repeat("x", storage.MinPageSize) + "</html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(page))
	}))
	defer server.Close()

	cache, err := storage.New(t.TempDir())
	require.NoError(t, err)

	s := newTestScraper(t, server.URL, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := s.Fetch(ctx, server.URL+"/a")
		require.NoError(t, err)
		if got != page {
			t.Fatalf("Fetch() returned unexpected page")
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	_, err = s.FetchFresh(ctx, server.URL+"/a")
	require.NoError(t, err)
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("FetchFresh should bypass the cache, server hit %d times", n)
	}
}

func TestScraper_SmallPagesNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>Fehler</html>"))
	}))
	defer server.Close()

	cache, err := storage.New(t.TempDir())
	require.NoError(t, err)

	s, err := New(Options{
		BaseURL:        server.URL,
		Interval:       time.Millisecond,
		Cache:          cache,
		SkipSmallPages: true,
	})
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), server.URL+"/d")
	require.NoError(t, err)

	if _, ok, _ := cache.Get(server.URL + "/d"); ok {
		t.Error("error page should not have been cached")
	}
}

func TestScraper_Listing(t *testing.T) {
	listing := loadFixture(t, "listing.html")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/terminkalender.php" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listing))
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL, nil)
	records, err := s.Listing(context.Background())
	require.NoError(t, err)

	if len(records) != 3 {
		t.Fatalf("Listing() returned %d records, want 3", len(records))
	}
	if !strings.HasPrefix(records[0].DetailLink, server.URL+"/veranstaltungdetails.php") {
		t.Errorf("detail link not resolved against base: %q", records[0].DetailLink)
	}
}
