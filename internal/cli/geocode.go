package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/enrich"
	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/geocode"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

func (a *app) geocodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Fill Latitude and Longitude from PLZ and Ort",
		Long: `Queries the Google Geocoding API for "<PLZ> <Ort>, Deutschland" of every
row without coordinates. The API key is read from VOLKSFESTE_GOOGLE_API_KEY
or google.api_key in the config file. The output is saved every --save-every
rows and at the end.`,
		Args: cobra.NoArgs,
		RunE: a.runGeocode,
	}

	cmd.Flags().StringP("input", "i", config.DefaultMaps, "Input workbook")
	cmd.Flags().StringP("output", "o", config.DefaultCoordinates, "Output workbook")
	cmd.Flags().Int("save-every", enrich.DefaultCoordinateSaveEvery, "Save the output every n rows")
	a.bind(cmd.Flags(), "input", "geocode.input")
	a.bind(cmd.Flags(), "output", "geocode.output")
	a.bind(cmd.Flags(), "save-every", "geocode.save_every")

	return cmd
}

func (a *app) runGeocode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg

	locator, err := geocode.NewGoogle(geocode.GoogleOptions{
		APIKey:   cfg.Google.APIKey,
		BaseURL:  cfg.Google.URL,
		Interval: cfg.Google.Interval,
		Retries:  cfg.Google.Retries,
	})
	if err != nil {
		return fmt.Errorf("%w (set %s_GOOGLE_API_KEY)", err, config.EnvPrefix)
	}

	t, err := sheet.Read(cfg.Geocode.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.Geocode.Input, err)
	}
	logger.Info("Input loaded", logger.Fields{"file": cfg.Geocode.Input, "rows": t.Len()})

	opts := sheet.WriteOptions{
		Links:          t.KeepButtons(),
		NumericColumns: []string{event.ColLatitude, event.ColLongitude},
	}
	save := func() error {
		return t.Save(cfg.Geocode.Output, opts)
	}

	progress, stop := a.startProgress("Geocoding")
	res, err := enrich.Coordinates(ctx, t, locator, enrich.CoordinateOptions{
		SaveEvery: cfg.Geocode.SaveEvery,
		Save:      save,
		Progress:  progress,
	})
	stop()
	if err != nil {
		return err
	}

	if err := save(); err != nil {
		return err
	}
	logger.Info("Coordinates saved", logger.Fields{"file": cfg.Geocode.Output})

	writeSummary(a.stdout, "geocode", cfg.Geocode.Output, res)
	return finish(ctx, res.Interrupted)
}
