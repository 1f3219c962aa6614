// Package enrich runs the row-by-row batch steps that complete an event
// sheet: postcodes, coordinates, redirect targets and detail page fields.
//
// Every runner works on a *sheet.Table in place, one row at a time, and
// stops between rows when its context is canceled. The returned Result says
// how far it got so the caller can save what is there.
package enrich

import (
	"context"
	"time"
)

// Result summarizes one run
type Result struct {
	Total     int
	Processed int
	Updated   int
	Skipped   int
	Failed    int
	// Interrupted is set when the context was canceled before the last row
	Interrupted bool
	// Next is the index of the first row that was not handled
	Next int
}

// ProgressFunc is called after each handled row
type ProgressFunc func(done, total int)

func report(p ProgressFunc, done, total int) {
	if p != nil {
		p(done, total)
	}
}

// sleep waits for d or until ctx is canceled
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// due reports whether a periodic action is due after row i
func due(i, every int) bool {
	return every > 0 && i > 0 && i%every == 0
}
