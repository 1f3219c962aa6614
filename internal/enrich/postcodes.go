package enrich

import (
	"context"
	"errors"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/geocode"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

// FallbackLookup resolves a place name from a static table
type FallbackLookup interface {
	Lookup(city string) (string, bool)
}

// PostcodeOptions configures Postcodes
type PostcodeOptions struct {
	Fallback FallbackLookup
	Progress ProgressFunc
}

// Postcodes fills empty PLZ cells from the Stadt column. A PLZ column is
// inserted in front when the sheet has none. Filled cells are never touched.
func Postcodes(ctx context.Context, t *sheet.Table, finder geocode.PostcodeFinder, opts PostcodeOptions) (Result, error) {
	if err := t.Require(event.ColStadt); err != nil {
		return Result{}, err
	}
	if !t.Has(event.ColPLZ) {
		t.InsertColumn(0, event.ColPLZ)
	}
	if opts.Fallback == nil {
		opts.Fallback = geocode.NewFallback(nil)
	}

	res := Result{Total: t.Len()}

	for i := range t.Rows {
		if ctx.Err() != nil {
			res.Interrupted = true
			res.Next = i
			return res, nil
		}
		report(opts.Progress, i, res.Total)

		if !t.IsBlank(i, event.ColPLZ) {
			res.Skipped++
			metrics.Row("plz", "skipped")
			continue
		}

		city := t.Get(i, event.ColStadt)
		if city == "" {
			res.Skipped++
			metrics.Row("plz", "skipped")
			continue
		}
		res.Processed++

		plz, err := finder.Postcode(ctx, city)
		if err == nil {
			t.Set(i, event.ColPLZ, plz)
			res.Updated++
			metrics.Row("plz", "updated")
			logger.Info("Postcode found", logger.Fields{"stadt": city, "plz": plz})
			continue
		}

		if errors.Is(err, geocode.ErrNoResult) {
			logger.Warn("No postcode from geocoder", logger.Fields{"stadt": city})
		} else {
			logger.Error("Postcode lookup failed", logger.Fields{"stadt": city}, err)
		}

		if fb, ok := opts.Fallback.Lookup(city); ok {
			t.Set(i, event.ColPLZ, fb)
			res.Updated++
			metrics.Row("plz", "fallback")
			logger.Info("Fallback postcode used", logger.Fields{"stadt": city, "plz": fb})
			continue
		}

		t.Set(i, event.ColPLZ, "")
		res.Failed++
		metrics.Row("plz", "failed")
	}

	res.Next = t.Len()
	report(opts.Progress, res.Total, res.Total)
	return res, nil
}
