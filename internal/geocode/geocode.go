package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vukdaten/volksfeste/internal/logger"
)

const (
	Timeout        = 10 * time.Second
	DefaultRetries = 3
	DefaultPause   = time.Second
)

// ErrNoResult is returned when a geocoder answers but finds nothing
var ErrNoResult = errors.New("no result")

// Coordinates is a WGS84 position
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// StatusError is a definitive non-OK answer from a geocoding API
type StatusError struct {
	Service string
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %s: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned status %s", e.Service, e.Status)
}

// Definitive reports whether err is a final answer that retrying or asking
// again would not change.
func Definitive(err error) bool {
	if err == nil || errors.Is(err, ErrNoResult) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// Locator resolves a free-text address to coordinates
type Locator interface {
	Locate(ctx context.Context, address string) (Coordinates, error)
}

// PostcodeFinder resolves a place name to a German postcode
type PostcodeFinder interface {
	Postcode(ctx context.Context, city string) (string, error)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: Timeout}
}

// retry runs op up to tries times with a constant pause. Definitive errors
// end the loop at once.
func retry(ctx context.Context, service, query string, tries int, pause time.Duration, op func() error) error {
	if tries < 1 {
		tries = 1
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(pause), uint64(tries-1)),
		ctx,
	)

	wrapped := func() error {
		err := op()
		if err != nil && Definitive(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Geocoding request failed, retrying", logger.Fields{
			"service": service,
			"query":   query,
			"wait":    wait.String(),
			"err":     err.Error(),
		})
	}

	return backoff.RetryNotify(wrapped, b, notify)
}
