package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/enrich"
	"github.com/vukdaten/volksfeste/internal/geocode"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

func (a *app) plzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plz",
		Short: "Fill missing postal codes from the Stadt column",
		Long: `Looks up the postal code of every row with an empty PLZ via Nominatim,
falling back to a built-in table of cities. The output is a UTF-8 CSV with
BOM, or a workbook when the output name ends in .xlsx.`,
		Args: cobra.NoArgs,
		RunE: a.runPLZ,
	}

	cmd.Flags().StringP("input", "i", config.DefaultPLZInput, "Input CSV or XLSX with a Stadt column")
	cmd.Flags().StringP("output", "o", config.DefaultPLZOutput, "Output file")
	a.bind(cmd.Flags(), "input", "plz.input")
	a.bind(cmd.Flags(), "output", "plz.output")

	return cmd
}

func (a *app) runPLZ(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg

	t, err := sheet.Read(cfg.PLZ.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.PLZ.Input, err)
	}
	logger.Info("Input loaded", logger.Fields{"file": cfg.PLZ.Input, "rows": t.Len()})

	finder := geocode.NewNominatim(geocode.NominatimOptions{
		BaseURL:   cfg.Nominatim.URL,
		UserAgent: cfg.Nominatim.UserAgent,
		Interval:  cfg.Nominatim.Interval,
		Retries:   cfg.Nominatim.Retries,
	})

	progress, stop := a.startProgress("PLZ")
	res, err := enrich.Postcodes(ctx, t, finder, enrich.PostcodeOptions{
		Fallback: geocode.NewFallback(cfg.Fallback),
		Progress: progress,
	})
	stop()
	if err != nil {
		return err
	}

	if err := t.Save(cfg.PLZ.Output, sheet.WriteOptions{}); err != nil {
		return err
	}
	logger.Info("Postal codes saved", logger.Fields{"file": cfg.PLZ.Output})

	writeSummary(a.stdout, "plz", cfg.PLZ.Output, res)
	return finish(ctx, res.Interrupted)
}
