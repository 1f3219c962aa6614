package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/logger"
	"github.com/vukdaten/volksfeste/internal/sheet"
)

func (a *app) buttonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buttons",
		Short: "Turn the URLs of a column into labelled hyperlinks",
		Args:  cobra.NoArgs,
		RunE:  a.runButtons,
	}

	cmd.Flags().StringP("input", "i", config.DefaultMaps, "Input workbook")
	cmd.Flags().StringP("output", "o", config.DefaultWebsites, "Output workbook")
	cmd.Flags().String("column", sheet.DefaultButtonColumn, "Column holding the URLs")
	cmd.Flags().String("label", sheet.DefaultButtonLabel, "Text shown instead of the URL")
	a.bind(cmd.Flags(), "input", "buttons.input")
	a.bind(cmd.Flags(), "output", "buttons.output")
	a.bind(cmd.Flags(), "column", "buttons.column")
	a.bind(cmd.Flags(), "label", "buttons.label")

	return cmd
}

func (a *app) runButtons(cmd *cobra.Command, args []string) error {
	cfg := a.cfg.Buttons

	n, err := sheet.Buttonize(cfg.Input, cfg.Output, cfg.Column, cfg.Label)
	if err != nil {
		return err
	}

	logger.Info("Buttons written", logger.Fields{
		"file":   cfg.Output,
		"column": cfg.Column,
		"links":  n,
	})
	fmt.Fprintf(a.stdout, "%d Links in %q umgewandelt, gespeichert unter %s\n", n, cfg.Column, cfg.Output)
	return nil
}
