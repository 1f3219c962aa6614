package enrich

import (
	"context"
	"fmt"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

// Scrape reads the event calendar and every linked detail page into a sheet
// with the listing columns followed by the detail columns.
func Scrape(ctx context.Context, src ListingSource, progress ProgressFunc) (*sheet.Table, Result, error) {
	records, err := src.Listing(ctx)
	if err != nil {
		return nil, Result{}, fmt.Errorf("reading event calendar: %w", err)
	}
	logger.Info("Events found", logger.Fields{"count": len(records)})

	res := Result{Total: len(records)}

	for i, rec := range records {
		if ctx.Err() != nil {
			res.Interrupted = true
			res.Next = i
			break
		}
		report(progress, i, res.Total)
		res.Processed++

		fields := logger.Fields{
			"row":           fmt.Sprintf("%d/%d", i+1, len(records)),
			"veranstaltung": rec.Veranstaltung,
			"ort":           rec.Ort,
		}

		details, err := src.Details(ctx, rec.DetailLink, false)
		switch {
		case err != nil:
			res.Failed++
			metrics.Row("scrape", "failed")
			logger.Error("Detail page failed", fields, err)
		case len(details) == 0:
			res.Failed++
			metrics.Row("scrape", "failed")
			logger.Warn("No details found", fields)
		default:
			rec.Merge(details)
			res.Updated++
			metrics.Row("scrape", "updated")
			fields["fields"] = len(details)
			logger.Debug("Details found", fields)
		}
	}

	if !res.Interrupted {
		res.Next = len(records)
		report(progress, res.Total, res.Total)
	}

	columns := append(append([]string{}, event.ListingColumns...), event.DetailColumns...)
	return sheet.FromRecords(records, columns), res, nil
}
