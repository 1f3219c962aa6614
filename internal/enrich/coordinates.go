package enrich

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/geocode"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

const (
	DefaultCoordinateSaveEvery = 25
	DefaultErrorPause          = time.Second
)

// CoordinateOptions configures Coordinates
type CoordinateOptions struct {
	// SaveEvery calls Save after every n-th row index that was queried
	SaveEvery  int
	Save       func() error
	ErrorPause time.Duration
	Progress   ProgressFunc
}

// Coordinates fills Latitude and Longitude from "<PLZ> <Ort>, Deutschland".
// Rows that already have both values are never overwritten.
func Coordinates(ctx context.Context, t *sheet.Table, locator geocode.Locator, opts CoordinateOptions) (Result, error) {
	t.EnsureColumn(event.ColLatitude)
	t.EnsureColumn(event.ColLongitude)
	if opts.ErrorPause < 0 {
		opts.ErrorPause = 0
	}

	res := Result{Total: t.Len()}

	for i := range t.Rows {
		if ctx.Err() != nil {
			res.Interrupted = true
			res.Next = i
			return res, nil
		}
		report(opts.Progress, i, res.Total)

		if !t.IsBlank(i, event.ColLatitude) && !t.IsBlank(i, event.ColLongitude) {
			res.Skipped++
			metrics.Row("geocode", "skipped")
			continue
		}

		ort := t.Get(i, event.ColOrt)
		plz := t.Get(i, event.ColPLZ)
		if t.IsBlank(i, event.ColOrt) || t.IsBlank(i, event.ColPLZ) {
			logger.Warn("No Ort or PLZ, row skipped", logger.Fields{"row": i})
			res.Skipped++
			metrics.Row("geocode", "skipped")
			continue
		}
		res.Processed++

		address := fmt.Sprintf("%s %s, Deutschland", plz, ort)
		coords, err := locator.Locate(ctx, address)

		var statusErr *geocode.StatusError
		switch {
		case err == nil:
			t.Set(i, event.ColLatitude, formatCoordinate(coords.Latitude))
			t.Set(i, event.ColLongitude, formatCoordinate(coords.Longitude))
			res.Updated++
			metrics.Row("geocode", "updated")
			logger.Debug("Coordinates found", logger.Fields{
				"address": address,
				"lat":     coords.Latitude,
				"lng":     coords.Longitude,
			})
		case errors.As(err, &statusErr), errors.Is(err, geocode.ErrNoResult):
			res.Failed++
			metrics.Row("geocode", "failed")
			logger.Warn("No coordinates found", logger.Fields{"address": address, "status": statusOf(err)})
		default:
			res.Failed++
			metrics.Row("geocode", "failed")
			logger.Error("Geocoding failed", logger.Fields{"address": address}, err)
			sleep(ctx, opts.ErrorPause)
		}

		if due(i, opts.SaveEvery) && opts.Save != nil {
			if err := opts.Save(); err != nil {
				return res, fmt.Errorf("saving checkpoint: %w", err)
			}
			logger.Info("Checkpoint saved", logger.Fields{"row": i})
		}
	}

	res.Next = t.Len()
	report(opts.Progress, res.Total, res.Total)
	return res, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func statusOf(err error) string {
	var statusErr *geocode.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return "ZERO_RESULTS"
}
