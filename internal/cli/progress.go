package cli

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"

	"github.com/vukdaten/volksfeste/internal/enrich"
)

// startProgress shows a spinner with "label n/total" on a terminal. Without a
// terminal progress is only visible in the log. stop must be called.
func (a *app) startProgress(label string) (progress enrich.ProgressFunc, stop func()) {
	if !a.interactive {
		return nil, func() {}
	}

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(a.stderr))
	s.Suffix = " " + label
	s.Start()

	progress = func(done, total int) {
		s.Lock()
		s.Suffix = fmt.Sprintf(" %s %d/%d", label, done, total)
		s.Unlock()
	}
	return progress, s.Stop
}
