package geocode

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/sling"
	"golang.org/x/time/rate"

	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
)

const (
	NominatimURL       = "https://nominatim.openstreetmap.org/"
	NominatimUserAgent = "volksfeste-plz-finder/1.0"
	// Nominatim's usage policy allows one request per second
	NominatimInterval = time.Second
)

// NominatimOptions configures a Nominatim client
type NominatimOptions struct {
	BaseURL    string
	UserAgent  string
	Interval   time.Duration
	Retries    int
	Pause      time.Duration
	HTTPClient *http.Client
	Cache      *Cache[*Place]
}

// Place is one Nominatim search result
type Place struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

type nominatimParams struct {
	Query          string `url:"q"`
	Format         string `url:"format"`
	AddressDetails int    `url:"addressdetails"`
	Limit          int    `url:"limit"`
}

// Nominatim queries the OpenStreetMap search API
type Nominatim struct {
	sling   *sling.Sling
	limiter *rate.Limiter
	retries int
	pause   time.Duration
	cache   *Cache[*Place]
}

// NewNominatim creates a Nominatim client
func NewNominatim(opts NominatimOptions) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = NominatimURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = NominatimUserAgent
	}
	if opts.Interval <= 0 {
		opts.Interval = NominatimInterval
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Pause <= 0 {
		opts.Pause = DefaultPause
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = defaultHTTPClient()
	}
	if opts.Cache == nil {
		opts.Cache = NewCache[*Place](0, 0)
	}

	return &Nominatim{
		sling: sling.New().
			Client(opts.HTTPClient).
			Base(opts.BaseURL).
			Set("User-Agent", opts.UserAgent),
		limiter: rate.NewLimiter(rate.Every(opts.Interval), 1),
		retries: opts.Retries,
		pause:   opts.Pause,
		cache:   opts.Cache,
	}
}

// Search returns the best match for query, or ErrNoResult
func (n *Nominatim) Search(ctx context.Context, query string) (*Place, error) {
	return n.cache.Do(query, func() (*Place, error) {
		var place *Place
		err := retry(ctx, "nominatim", query, n.retries, n.pause, func() error {
			p, err := n.search(ctx, query)
			place = p
			return err
		})
		return place, err
	})
}

func (n *Nominatim) search(ctx context.Context, query string) (*Place, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := n.sling.New().Get("search").QueryStruct(&nominatimParams{
		Query:          query,
		Format:         "json",
		AddressDetails: 1,
		Limit:          1,
	}).Request()
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var places []Place
	resp, err := n.sling.Do(req.WithContext(ctx), &places, nil)
	if err != nil {
		metrics.Fetch("nominatim", "error")
		return nil, fmt.Errorf("querying nominatim: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.Fetch("nominatim", "error")
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	if len(places) == 0 {
		metrics.Fetch("nominatim", "empty")
		return nil, ErrNoResult
	}

	metrics.Fetch("nominatim", "ok")
	return &places[0], nil
}

// Postcode looks up "<city>, Deutschland" and returns the postcode of the
// first result. A result without postcode is reported as ErrNoResult.
func (n *Nominatim) Postcode(ctx context.Context, city string) (string, error) {
	query := fmt.Sprintf("%s, Deutschland", strings.TrimSpace(city))

	place, err := n.Search(ctx, query)
	if err != nil {
		return "", err
	}

	postcode := strings.TrimSpace(place.Address["postcode"])
	if postcode == "" {
		logger.Debug("Result without postcode", logger.Fields{"query": query, "place": place.DisplayName})
		return "", ErrNoResult
	}

	return postcode, nil
}
