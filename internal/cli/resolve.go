package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/enrich"
	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/redirect"
	"github.com/vukdaten/volksfeste/internal/sheet"
	"github.com/vukdaten/volksfeste/internal/storage"
)

func (a *app) resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve Navigation_Link redirects into Navigation_Echt",
		Long: `Follows the redirects of every Navigation_Link and stores the final address
in Navigation_Echt, shown as a Maps button. Progress is saved every
--save-every rows; a later run asks whether to continue from there.

With --simple the column is rebuilt from scratch without a progress file and
every row sharing a link receives the same target.`,
		Args: cobra.NoArgs,
		RunE: a.runResolve,
	}

	cmd.Flags().StringP("input", "i", config.DefaultClean, "Input workbook")
	cmd.Flags().StringP("output", "o", config.DefaultMaps, "Output workbook")
	cmd.Flags().Int("save-every", enrich.DefaultRedirectSaveEvery, "Save output and progress every n rows")
	cmd.Flags().String("progress-file", config.DefaultProgressFile, "Progress file")
	cmd.Flags().Bool("resume", true, "Continue from the progress file without asking")
	cmd.Flags().Bool("simple", false, "Resolve each distinct link once, without progress file")
	a.bind(cmd.Flags(), "input", "resolve.input")
	a.bind(cmd.Flags(), "output", "resolve.output")
	a.bind(cmd.Flags(), "save-every", "resolve.save_every")
	a.bind(cmd.Flags(), "progress-file", "progress_file")

	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, args []string) error {
	simple, _ := cmd.Flags().GetBool("simple")
	if simple {
		return a.runResolveSimple(cmd)
	}

	ctx := cmd.Context()
	cfg := a.cfg

	progressFile, err := storage.NewProgress(cfg.ProgressFile)
	if err != nil {
		return err
	}

	start, err := a.startIndex(cmd, progressFile)
	if err != nil {
		return err
	}

	// A resumed run continues on its own output so rows before start keep their targets
	input := cfg.Resolve.Input
	if start > 0 {
		if _, err := os.Stat(cfg.Resolve.Output); err == nil {
			input = cfg.Resolve.Output
		}
	}

	t, err := sheet.Read(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	if err := t.Require(event.ColNavigationLink); err != nil {
		return err
	}
	logger.Info("Links loaded", logger.Fields{"file": input, "rows": t.Len(), "start": start})

	opts := sheet.WriteOptions{
		Links:          []sheet.LinkColumn{{Column: event.ColNavigationEcht, Label: sheet.MapsButtonLabel}},
		NumericColumns: []string{event.ColLatitude, event.ColLongitude},
	}
	checkpoint := func(index int) error {
		if err := t.Save(cfg.Resolve.Output, opts); err != nil {
			return err
		}
		return progressFile.Save(index)
	}

	resolver := redirect.New(redirect.Options{
		Attempts:  cfg.Redirect.Attempts,
		Pause:     cfg.Redirect.Pause,
		Interval:  cfg.Redirect.Interval,
		Timeout:   cfg.Redirect.Timeout,
		RequireOK: true,
	})

	progress, stop := a.startProgress("Weiterleitungen")
	res, err := enrich.Redirects(ctx, t, resolver, enrich.RedirectOptions{
		Start:      start,
		SaveEvery:  cfg.Resolve.SaveEvery,
		Checkpoint: checkpoint,
		Progress:   progress,
	})
	stop()
	if err != nil {
		return err
	}

	if err := checkpoint(res.Next); err != nil {
		return err
	}
	logger.Info("Links saved", logger.Fields{
		"file":     cfg.Resolve.Output,
		"progress": progressFile.Path(),
		"next":     res.Next,
	})

	writeSummary(a.stdout, "resolve", cfg.Resolve.Output, res)
	return finish(ctx, res.Interrupted)
}

// startIndex returns the row to start at. With a saved index the user is
// asked on a terminal; otherwise --resume decides.
func (a *app) startIndex(cmd *cobra.Command, p *storage.Progress) (int, error) {
	index, exists, err := p.Load()
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	resume, _ := cmd.Flags().GetBool("resume")
	if a.interactive && !cmd.Flags().Changed("resume") {
		if resume, err = a.askResume(index); err != nil {
			return 0, err
		}
	}

	if !resume {
		if err := p.Reset(); err != nil {
			return 0, err
		}
		logger.Info("Starting over, progress removed", logger.Fields{"file": p.Path()})
		return 0, nil
	}
	logger.Info("Continuing", logger.Fields{"row": index})
	return index, nil
}

func (a *app) runResolveSimple(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := a.cfg

	t, err := sheet.Read(cfg.Resolve.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.Resolve.Input, err)
	}

	resolver := redirect.New(redirect.Options{
		Attempts: 1,
		Pause:    cfg.Redirect.Pause,
		Interval: cfg.Redirect.Interval,
		Timeout:  cfg.Redirect.Timeout,
	})

	progress, stop := a.startProgress("Weiterleitungen")
	res, err := enrich.RedirectsSimple(ctx, t, resolver, progress)
	stop()
	if err != nil {
		return err
	}

	opts := sheet.WriteOptions{
		Links:          []sheet.LinkColumn{{Column: event.ColNavigationEcht}},
		NumericColumns: []string{event.ColLatitude, event.ColLongitude},
	}
	if err := t.Save(cfg.Resolve.Output, opts); err != nil {
		return err
	}
	logger.Info("Links saved", logger.Fields{"file": cfg.Resolve.Output})

	writeSummary(a.stdout, "resolve", cfg.Resolve.Output, res)
	return finish(ctx, res.Interrupted)
}
