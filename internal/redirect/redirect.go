// Package redirect follows short and tracking links to their final address.
package redirect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
)

const (
	DefaultAttempts = 3
	DefaultPause    = time.Second
	DefaultInterval = 2 * time.Second
	Timeout         = 10 * time.Second
	MaxRedirects    = 10
)

// Options configures a Resolver
type Options struct {
	Attempts int
	Pause    time.Duration
	// Interval is the minimum time between two resolutions
	Interval time.Duration
	Timeout  time.Duration
	// RequireOK accepts a final address only when it answered 200
	RequireOK bool
}

// Resolver follows redirects with GET requests
type Resolver struct {
	http      *resty.Client
	limiter   *rate.Limiter
	attempts  int
	pause     time.Duration
	requireOK bool
}

// New creates a Resolver
func New(opts Options) *Resolver {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(MaxRedirects))

	return &Resolver{
		http:      client,
		limiter:   rate.NewLimiter(rate.Every(opts.Interval), 1),
		attempts:  opts.Attempts,
		pause:     opts.Pause,
		requireOK: opts.RequireOK,
	}
}

// Resolve returns the address link finally lands on
func (r *Resolver) Resolve(ctx context.Context, link string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.pause):
			}
		}

		final, err := r.follow(ctx, link)
		if err == nil {
			metrics.Fetch("redirect", "ok")
			return final, nil
		}

		lastErr = err
		logger.Warn("Resolving link failed", logger.Fields{
			"url":     link,
			"attempt": fmt.Sprintf("%d/%d", attempt, r.attempts),
			"err":     err.Error(),
		})
	}

	metrics.Fetch("redirect", "error")
	return "", fmt.Errorf("resolving %s: %w", link, lastErr)
}

func (r *Resolver) follow(ctx context.Context, link string) (string, error) {
	res, err := r.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(link)
	if err != nil {
		return "", err
	}
	defer res.RawBody().Close()

	if r.requireOK && res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", res.StatusCode())
	}

	raw := res.RawResponse
	if raw == nil || raw.Request == nil || raw.Request.URL == nil {
		return link, nil
	}
	return raw.Request.URL.String(), nil
}
