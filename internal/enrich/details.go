package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

const (
	DefaultRefreshEvery = 50
	DefaultRetryWait    = 2 * time.Second
)

// DetailSource fetches and parses detail pages through a renewable session
type DetailSource interface {
	Details(ctx context.Context, url string, fresh bool) (map[string]string, error)
	Refresh(ctx context.Context) error
}

// ListingSource additionally reads the event calendar
type ListingSource interface {
	DetailSource
	Listing(ctx context.Context) ([]*event.Record, error)
}

// DetailOptions configures Details
type DetailOptions struct {
	// Limit stops after this many links; 0 handles all
	Limit int
	// RefreshEvery renews the session after every n-th row index
	RefreshEvery int
	RetryWait    time.Duration
	Progress     ProgressFunc
}

// Details fills the detail columns of every row from its Detail_Link (or Link)
// page. A page without fields is fetched once more through a new session.
func Details(ctx context.Context, t *sheet.Table, src DetailSource, opts DetailOptions) (Result, error) {
	col, err := t.FirstOf(event.ColDetailLink, event.ColLink)
	if err != nil {
		return Result{}, err
	}
	for _, c := range event.DetailColumns {
		t.EnsureColumn(c)
	}
	if opts.RetryWait < 0 {
		opts.RetryWait = 0
	}

	res := Result{Total: t.Len()}
	if opts.Limit > 0 {
		logger.Info("Test run", logger.Fields{"limit": opts.Limit})
	}

	refresh := func() {
		if err := src.Refresh(ctx); err != nil {
			logger.Warn("Session refresh failed", logger.Fields{"err": err.Error()})
		}
	}
	refresh()

	count := 0
	for i := range t.Rows {
		if ctx.Err() != nil {
			res.Interrupted = true
			res.Next = i
			return res, nil
		}

		url := t.Get(i, col)
		if !strings.HasPrefix(url, "http") {
			res.Skipped++
			metrics.Row("details", "skipped")
			continue
		}
		count++
		if opts.Limit > 0 && count > opts.Limit {
			break
		}
		report(opts.Progress, i, res.Total)
		res.Processed++

		fields := logger.Fields{
			"row":           i + 1,
			"veranstaltung": t.Get(i, event.ColVeranstaltung),
			"ort":           t.Get(i, event.ColOrt),
		}

		details, err := src.Details(ctx, url, false)
		if err == nil && len(details) == 0 {
			logger.Warn("No details, renewing session and retrying", fields)
			refresh()
			if err := sleep(ctx, opts.RetryWait); err != nil {
				res.Interrupted = true
				res.Next = i
				return res, nil
			}
			details, err = src.Details(ctx, url, true)
		}

		switch {
		case err != nil:
			res.Failed++
			metrics.Row("details", "failed")
			logger.Error("Detail page failed", logger.Fields{"url": url}, err)
			refresh()
			continue
		case len(details) == 0:
			res.Failed++
			metrics.Row("details", "failed")
			logger.Warn("No details after retry", fields)
		default:
			for k, v := range details {
				t.Set(i, k, v)
			}
			res.Updated++
			metrics.Row("details", "updated")
			fields["fields"] = len(details)
			logger.Info("Details found", fields)
		}

		if due(i, opts.RefreshEvery) {
			logger.Debug("Routine session refresh", logger.Fields{"row": i})
			refresh()
		}
	}

	res.Next = t.Len()
	report(opts.Progress, res.Total, res.Total)
	return res, nil
}
