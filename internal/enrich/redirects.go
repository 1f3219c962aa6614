package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/metrics"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

const DefaultRedirectSaveEvery = 20

// LinkResolver returns the final address of a link
type LinkResolver interface {
	Resolve(ctx context.Context, link string) (string, error)
}

// RedirectOptions configures Redirects
type RedirectOptions struct {
	// Start skips all rows before this index
	Start     int
	SaveEvery int
	// Checkpoint persists the sheet and the row index
	Checkpoint func(index int) error
	Progress   ProgressFunc
}

// Redirects resolves Navigation_Link into Navigation_Echt row by row.
// Rows without an http link or with a resolved target are skipped.
func Redirects(ctx context.Context, t *sheet.Table, resolver LinkResolver, opts RedirectOptions) (Result, error) {
	if err := t.Require(event.ColNavigationLink); err != nil {
		return Result{}, err
	}
	t.EnsureColumn(event.ColNavigationEcht)

	res := Result{Total: t.Len()}
	if opts.Start < 0 {
		opts.Start = 0
	}
	if opts.Start > t.Len() {
		opts.Start = t.Len()
	}

	for i := opts.Start; i < t.Len(); i++ {
		if ctx.Err() != nil {
			res.Interrupted = true
			res.Next = i
			return res, nil
		}
		report(opts.Progress, i, res.Total)

		link := t.Get(i, event.ColNavigationLink)
		if !strings.HasPrefix(link, "http") || strings.HasPrefix(t.Get(i, event.ColNavigationEcht), "http") {
			res.Skipped++
			metrics.Row("resolve", "skipped")
			continue
		}
		res.Processed++

		target, err := resolver.Resolve(ctx, link)
		if err != nil {
			res.Failed++
			metrics.Row("resolve", "failed")
			logger.Warn("Link not resolved", logger.Fields{"row": i, "url": link, "err": err.Error()})
		} else {
			t.Set(i, event.ColNavigationEcht, target)
			res.Updated++
			metrics.Row("resolve", "updated")
		}

		if due(i, opts.SaveEvery) && opts.Checkpoint != nil {
			if err := opts.Checkpoint(i); err != nil {
				return res, fmt.Errorf("saving checkpoint: %w", err)
			}
			logger.Info("Checkpoint saved", logger.Fields{"row": i})
		}
	}

	res.Next = t.Len()
	report(opts.Progress, res.Total, res.Total)
	return res, nil
}

// RedirectsSimple rebuilds Navigation_Echt without checkpoints. Each distinct
// link is resolved once and the target is written to every row with that link.
func RedirectsSimple(ctx context.Context, t *sheet.Table, resolver LinkResolver, progress ProgressFunc) (Result, error) {
	if err := t.Require(event.ColNavigationLink); err != nil {
		return Result{}, err
	}
	col := t.EnsureColumn(event.ColNavigationEcht)
	for i := range t.Rows {
		t.Rows[i][col] = ""
	}

	rowsByLink := make(map[string][]int)
	var links []string
	for i := range t.Rows {
		if t.IsBlank(i, event.ColNavigationLink) {
			continue
		}
		link := t.Get(i, event.ColNavigationLink)
		if _, seen := rowsByLink[link]; !seen {
			links = append(links, link)
		}
		rowsByLink[link] = append(rowsByLink[link], i)
	}

	res := Result{Total: len(links)}

	for n, link := range links {
		if ctx.Err() != nil {
			res.Interrupted = true
			res.Next = n
			return res, nil
		}
		report(progress, n, res.Total)
		res.Processed++

		target, err := resolver.Resolve(ctx, link)
		if err != nil {
			res.Failed++
			metrics.Row("resolve", "failed")
			logger.Warn("Link not resolved", logger.Fields{"url": link, "err": err.Error()})
			continue
		}

		for _, i := range rowsByLink[link] {
			t.Rows[i][col] = target
		}
		res.Updated++
		metrics.Row("resolve", "updated")
		logger.Debug("Link resolved", logger.Fields{"url": link, "target": target, "rows": len(rowsByLink[link])})
	}

	res.Next = len(links)
	report(progress, res.Total, res.Total)
	return res, nil
}
