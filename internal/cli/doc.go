// Package cli implements the command-line interface for volksfeste.
//
// The cli package provides the Cobra-based CLI with one subcommand per
// processing step: scraping the event calendar and its detail pages, filling
// postal codes and coordinates, resolving navigation links, turning links into
// buttons, and serving the dashboard. It loads the configuration, sets up
// logging, shows progress on a terminal, and saves whatever a step produced
// when the run is interrupted.
package cli
