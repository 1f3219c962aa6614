package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vukdaten/volksfeste/internal/enrich"
	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/metrics"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// writeSummary prints the counters of one step. Row results recorded under
// step that the Result does not cover (e.g. fallback) are appended.
func writeSummary(w io.Writer, step, output string, res enrich.Result) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Ergebnis: %s", step))
	t.AppendRows([]table.Row{
		{"Zeilen", res.Total},
		{"Bearbeitet", res.Processed},
		{"Aktualisiert", res.Updated},
		{"Übersprungen", res.Skipped},
		{"Fehlgeschlagen", res.Failed},
	})

	counted := map[string]bool{"updated": true, "skipped": true, "failed": true}
	extra := metrics.Summary(step)
	var results []string
	for result := range extra {
		if !counted[result] {
			results = append(results, result)
		}
	}
	sort.Strings(results)
	for _, result := range results {
		t.AppendRow(table.Row{result, int(extra[result])})
	}

	if res.Interrupted {
		t.AppendRow(table.Row{"Abgebrochen bei Zeile", res.Next})
	}
	if output != "" {
		t.AppendFooter(table.Row{"Datei", output})
	}
	t.Render()
}

// writeFields prints parsed detail fields in column order
func writeFields(w io.Writer, fields map[string]string) {
	if len(fields) == 0 {
		fmt.Fprintln(w, "Keine Felder gefunden.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Feld", "Wert"})
	for _, col := range event.DetailColumns {
		if v, ok := fields[col]; ok {
			t.AppendRow(table.Row{col, v})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	t.Render()
}
