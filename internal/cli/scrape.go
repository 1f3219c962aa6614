package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/enrich"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/scraper"
	"github.com/vukdaten/volksfeste/internal/sheet"
	"github.com/vukdaten/volksfeste/internal/storage"
)

// newScraper creates a scraper on the configured HTML cache
func (a *app) newScraper(skipSmallPages bool) (*scraper.Scraper, error) {
	cache, err := storage.New(a.cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("initializing cache: %w", err)
	}

	return scraper.New(scraper.Options{
		BaseURL:        a.cfg.Scraper.BaseURL,
		Interval:       a.cfg.Scraper.Interval,
		Retries:        a.cfg.Scraper.Retries,
		Cache:          cache,
		SkipSmallPages: skipSmallPages,
	})
}

func (a *app) scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Read the event calendar and every detail page into a workbook",
		Args:  cobra.NoArgs,
		RunE:  a.runScrape,
	}

	cmd.Flags().StringP("output", "o", config.DefaultDetails, "Output workbook")
	a.bind(cmd.Flags(), "output", "scrape.output")

	return cmd
}

func (a *app) runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := a.newScraper(false)
	if err != nil {
		return err
	}

	progress, stop := a.startProgress("Detailseiten")
	t, res, err := enrich.Scrape(ctx, sc, progress)
	stop()
	if err != nil {
		return err
	}

	output := a.cfg.Scrape.Output
	if err := t.Save(output, sheet.WriteOptions{}); err != nil {
		return err
	}
	logger.Info("Events saved", logger.Fields{"file": output, "rows": t.Len()})

	writeSummary(a.stdout, "scrape", output, res)
	return finish(ctx, res.Interrupted)
}

func (a *app) detailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Add detail page fields to a workbook of detail links",
		Long: `Fetches the page behind Detail_Link (or Link) of every row and fills
Bundesland, Anschrift, Navigation_Link and the other detail columns. Pages
are cached; a page without fields is fetched again through a new session.
Use --limit for a short live test.`,
		Args: cobra.NoArgs,
		RunE: a.runDetails,
	}

	cmd.Flags().StringP("input", "i", config.DefaultListing, "Input workbook with detail links")
	cmd.Flags().StringP("output", "o", config.DefaultDetails, "Output workbook")
	cmd.Flags().Int("limit", 0, "Only handle the first n links (0 = all)")
	cmd.Flags().Int("refresh-every", enrich.DefaultRefreshEvery, "Renew the session every n rows")
	a.bind(cmd.Flags(), "input", "details.input")
	a.bind(cmd.Flags(), "output", "details.output")
	a.bind(cmd.Flags(), "refresh-every", "details.refresh_every")

	return cmd
}

func (a *app) runDetails(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg.Details
	limit, _ := cmd.Flags().GetInt("limit")

	t, err := sheet.Read(cfg.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.Input, err)
	}
	logger.Info("Input loaded", logger.Fields{"file": cfg.Input, "rows": t.Len()})

	sc, err := a.newScraper(true)
	if err != nil {
		return err
	}

	progress, stop := a.startProgress("Detailseiten")
	res, err := enrich.Details(ctx, t, sc, enrich.DetailOptions{
		Limit:        limit,
		RefreshEvery: cfg.RefreshEvery,
		RetryWait:    cfg.RetryWait,
		Progress:     progress,
	})
	stop()
	if err != nil {
		return err
	}

	if err := t.Save(cfg.Output, sheet.WriteOptions{Links: t.KeepButtons()}); err != nil {
		return err
	}
	logger.Info("Details saved", logger.Fields{"file": cfg.Output})

	writeSummary(a.stdout, "details", cfg.Output, res)
	return finish(ctx, res.Interrupted)
}

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a saved detail page and print its fields",
		Long:  `Offline test of the detail page parser. The file defaults to detail.html.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runParse,
	}
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	file := "detail.html"
	if len(args) > 0 {
		file = args[0]
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	fields, err := scraper.ParseDetail(f, a.cfg.Scraper.BaseURL)
	if err != nil {
		return err
	}

	writeFields(a.stdout, fields)
	return nil
}
