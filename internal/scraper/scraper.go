package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
	"github.com/vukdaten/volksfeste/internal/storage"
)

const (
	BaseURL     = "http://www.volksfestundkirmes.de/"
	ListingPath = "terminkalender.php?userid=&sessionid=&anbieterart="
	UserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	Timeout     = 20 * time.Second

	// DefaultInterval is the pause enforced between two requests
	DefaultInterval = 1500 * time.Millisecond
	DefaultRetries  = 2
)

// Options configures a Scraper
type Options struct {
	BaseURL  string
	Interval time.Duration
	Retries  int
	Cache    *storage.Cache
	// SkipSmallPages leaves pages that fail storage.Cacheable out of the cache.
	SkipSmallPages bool
}

// Scraper fetches pages of the events website through a cookie-carrying session
type Scraper struct {
	baseURL        string
	retries        int
	cache          *storage.Cache
	skipSmallPages bool
	limiter        *rate.Limiter
	http           *resty.Client
}

// New creates a Scraper. The session is established lazily by Refresh or the first request.
func New(opts Options) (*Scraper, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	s := &Scraper{
		baseURL:        opts.BaseURL,
		retries:        opts.Retries,
		cache:          opts.Cache,
		skipSmallPages: opts.SkipSmallPages,
		limiter:        rate.NewLimiter(rate.Every(opts.Interval), 1),
	}

	client, err := s.newClient()
	if err != nil {
		return nil, err
	}
	s.http = client

	return s, nil
}

// BaseURL returns the site root that relative links are resolved against
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// ListingURL returns the address of the event calendar page
func (s *Scraper) ListingURL() string {
	return s.baseURL + ListingPath
}

func (s *Scraper) newClient() (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(Timeout)
	client.SetHeaders(map[string]string{
		"User-Agent":      UserAgent,
		"Referer":         s.baseURL + "terminkalender.php",
		"Accept-Language": "de-DE,de;q=0.9,en;q=0.8",
	})
	client.SetRetryCount(s.retries)
	client.SetRetryWaitTime(2 * time.Second)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || (res != nil && res.StatusCode() >= 500)
	})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return s.limiter.Wait(req.Context())
	})

	return client, nil
}

// Refresh drops all cookies and visits the listing page to obtain a new session
func (s *Scraper) Refresh(ctx context.Context) error {
	client, err := s.newClient()
	if err != nil {
		return err
	}
	s.http = client

	logger.Debug("Refreshing session", logger.Fields{"url": s.ListingURL()})

	res, err := client.R().
		SetContext(ctx).
		SetHeader("Referer", s.baseURL).
		Get(s.ListingURL())
	if err != nil {
		metrics.Fetch("session", "error")
		return fmt.Errorf("refreshing session: %w", err)
	}
	if res.IsError() {
		metrics.Fetch("session", "error")
		return fmt.Errorf("refreshing session: unexpected status code: %d", res.StatusCode())
	}

	metrics.Fetch("session", "ok")
	return nil
}

// Get downloads a page and decodes it to UTF-8 from its declared charset
func (s *Scraper) Get(ctx context.Context, url string) (string, error) {
	logger.Debug("Loading page", logger.Fields{"url": url})

	res, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		metrics.Fetch("web", "error")
		return "", fmt.Errorf("fetching page: %w", err)
	}
	if res.IsError() {
		metrics.Fetch("web", "error")
		return "", fmt.Errorf("unexpected status code: %d", res.StatusCode())
	}

	page, err := decode(res.Body(), res.Header().Get("Content-Type"))
	if err != nil {
		metrics.Fetch("web", "error")
		return "", fmt.Errorf("decoding page: %w", err)
	}

	metrics.Fetch("web", "ok")
	return page, nil
}

func decode(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Fetch returns a page from the cache, downloading and caching it on a miss
func (s *Scraper) Fetch(ctx context.Context, url string) (string, error) {
	if s.cache != nil {
		page, ok, err := s.cache.Get(url)
		if err != nil {
			logger.Warn("Cache read failed", logger.Fields{"url": url, "err": err.Error()})
		} else if ok {
			metrics.Fetch("cache", "hit")
			return page, nil
		}
	}
	return s.FetchFresh(ctx, url)
}

// FetchFresh downloads a page bypassing the cache; the result is still cached
func (s *Scraper) FetchFresh(ctx context.Context, url string) (string, error) {
	page, err := s.Get(ctx, url)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if s.skipSmallPages && !storage.Cacheable(page) {
			logger.Debug("Page too small to cache", logger.Fields{"url": url, "bytes": len(page)})
			return page, nil
		}
		if err := s.cache.Put(url, page); err != nil {
			logger.Warn("Cache write failed", logger.Fields{"url": url, "err": err.Error()})
		}
	}

	return page, nil
}

// Listing fetches and parses the event calendar page
func (s *Scraper) Listing(ctx context.Context) ([]*event.Record, error) {
	page, err := s.Fetch(ctx, s.ListingURL())
	if err != nil {
		return nil, err
	}
	return ParseListing(strings.NewReader(page), s.baseURL)
}

// Details fetches and parses one detail page. fresh bypasses the cache.
func (s *Scraper) Details(ctx context.Context, url string, fresh bool) (map[string]string, error) {
	url = FixDetailURL(url)

	var (
		page string
		err  error
	)
	if fresh {
		page, err = s.FetchFresh(ctx, url)
	} else {
		page, err = s.Fetch(ctx, url)
	}
	if err != nil {
		return nil, err
	}

	return ParseDetail(strings.NewReader(page), s.baseURL)
}

// FixDetailURL fills an empty anbieterart parameter with 1, without which the
// site answers with an empty page.
func FixDetailURL(url string) string {
	if strings.Contains(url, "anbieterart=&") {
		return strings.Replace(url, "anbieterart=&", "anbieterart=1&", 1)
	}
	if strings.HasSuffix(url, "anbieterart=") {
		return url + "1"
	}
	return url
}
