package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/vukdaten/volksfeste/internal/config"
	"github.com/vukdaten/volksfeste/internal/logger"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// ErrInterrupted is returned after a step was stopped by a signal and its
// partial result was saved
var ErrInterrupted = errors.New("interrupted")

// app holds the state shared by all subcommands of one invocation
type app struct {
	v   *viper.Viper
	cfg *config.Config

	configFile string
	verbose    bool
	logLevel   string
	logFormat  string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// interactive is set when stdin and stderr are terminals
	interactive bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:           config.New(),
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: isTerminal(stdin) && isTerminal(stderr),
	}
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdin, os.Stdout, os.Stderr).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volksfeste",
		Short: "Collect, enrich and browse German Volksfeste",
		Long: `A set of tools that scrape the Volksfest calendar, complete the
resulting spreadsheet with postal codes, coordinates and navigation links,
and show it on a local map dashboard.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default ./volksfeste.yaml if present)")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging (same as --log-level debug)")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", string(logger.FormatText), "Log format: text or json")
	flags.String("cache-dir", config.DefaultCacheDir, "Directory for cached HTML pages")
	a.bind(flags, "cache-dir", "cache_dir")

	cmd.AddCommand(
		a.plzCmd(),
		a.geocodeCmd(),
		a.buttonsCmd(),
		a.resolveCmd(),
		a.scrapeCmd(),
		a.detailsCmd(),
		a.parseCmd(),
		a.serveCmd(),
	)

	return cmd
}

// bind makes a flag override the config key when it is set
func (a *app) bind(flags *pflag.FlagSet, name, key string) {
	cobra.CheckErr(a.v.BindPFlag(key, flags.Lookup(name)))
}

// setup configures logging and loads the configuration
func (a *app) setup(cmd *cobra.Command, args []string) error {
	format := logger.Format(strings.ToLower(a.logFormat))
	if format != logger.FormatText && format != logger.FormatJSON {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", a.logFormat)
	}

	level := logger.ParseLevel(a.logLevel)
	if a.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, a.stderr, format))

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Debug("Configuration loaded", logger.Fields{
		"command":   cmd.Name(),
		"config":    a.v.ConfigFileUsed(),
		"cache_dir": cfg.CacheDir,
	})
	return nil
}

// finish turns an interrupted run into ErrInterrupted after the result was saved
func finish(ctx context.Context, interrupted bool) error {
	if interrupted || ctx.Err() != nil {
		logger.Warn("Run interrupted, progress saved", nil)
		return ErrInterrupted
	}
	return nil
}

// Execute runs the CLI and exits with its status code
func Execute() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInterrupted):
		fmt.Fprintln(os.Stderr, "Abgebrochen.")
		return ExitInterrupted
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
}
