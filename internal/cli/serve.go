package cli

import (
	"github.com/spf13/cobra"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/dashboard"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Show the geocoded events on a local map dashboard",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	cmd.Flags().StringP("input", "i", config.DefaultCoordinates, "Workbook with Latitude and Longitude")
	cmd.Flags().String("addr", dashboard.DefaultAddr, "Listen address")
	a.bind(cmd.Flags(), "input", "serve.input")
	a.bind(cmd.Flags(), "addr", "serve.addr")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	entries, err := dashboard.Load(a.cfg.Serve.Input)
	if err != nil {
		return err
	}

	srv, err := dashboard.New(entries, dashboard.Options{Addr: a.cfg.Serve.Addr})
	if err != nil {
		return err
	}

	return srv.Run(cmd.Context())
}
