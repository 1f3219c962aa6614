package geocode

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/sling"
	"golang.org/x/time/rate"

	"github.com/vukdaten/volksfeste/internal/metrics"
)

const (
	GoogleURL      = "https://maps.googleapis.com/maps/api/"
	GoogleInterval = 200 * time.Millisecond
)

// GoogleOptions configures a Google Geocoding client
type GoogleOptions struct {
	APIKey     string
	BaseURL    string
	Interval   time.Duration
	Retries    int
	Pause      time.Duration
	HTTPClient *http.Client
	Cache      *Cache[Coordinates]
}

type googleParams struct {
	Address string `url:"address"`
	Key     string `url:"key"`
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Google queries the Google Geocoding API
type Google struct {
	apiKey  string
	sling   *sling.Sling
	limiter *rate.Limiter
	retries int
	pause   time.Duration
	cache   *Cache[Coordinates]
}

// NewGoogle creates a Google Geocoding client
func NewGoogle(opts GoogleOptions) (*Google, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("google geocoding needs an API key")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = GoogleURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Interval <= 0 {
		opts.Interval = GoogleInterval
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
		opts.Cache = NewCache[Coordinates](0, 0)
	}

	return &Google{
		apiKey:  opts.APIKey,
		sling:   sling.New().Client(opts.HTTPClient).Base(opts.BaseURL),
		limiter: rate.NewLimiter(rate.Every(opts.Interval), 1),
		retries: opts.Retries,
		pause:   opts.Pause,
		cache:   opts.Cache,
	}, nil
}

// Locate returns the location of the first result for address. Any status
// other than OK is returned as *StatusError.
func (g *Google) Locate(ctx context.Context, address string) (Coordinates, error) {
	return g.cache.Do(address, func() (Coordinates, error) {
		var coords Coordinates
		err := retry(ctx, "google", address, g.retries, g.pause, func() error {
			c, err := g.locate(ctx, address)
			coords = c
			return err
		})
		return coords, err
	})
}

func (g *Google) locate(ctx context.Context, address string) (Coordinates, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Coordinates{}, err
	}

	req, err := g.sling.New().Get("geocode/json").QueryStruct(&googleParams{
		Address: address,
		Key:     g.apiKey,
	}).Request()
	if err != nil {
		return Coordinates{}, fmt.Errorf("creating request: %w", err)
	}

	var body googleResponse
	resp, err := g.sling.Do(req.WithContext(ctx), &body, nil)
	if err != nil {
		metrics.Fetch("google", "error")
		return Coordinates{}, fmt.Errorf("querying google: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.Fetch("google", "error")
		return Coordinates{}, fmt.Errorf("google returned HTTP status %d", resp.StatusCode)
	}

	if body.Status != "OK" {
		metrics.Fetch("google", strings.ToLower(body.Status))
		return Coordinates{}, &StatusError{Service: "google", Status: body.Status, Message: body.ErrorMessage}
	}
	if len(body.Results) == 0 {
		metrics.Fetch("google", "empty")
		return Coordinates{}, ErrNoResult
	}

	metrics.Fetch("google", "ok")
	loc := body.Results[0].Geometry.Location
	return Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
