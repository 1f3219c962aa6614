// Package config loads the settings of all volksfeste subcommands.
//
// Values come, in increasing priority, from built-in defaults, an optional
// config file (volksfeste.yaml in the working directory or --config),
// VOLKSFESTE_* environment variables and command-line flags. Nested keys map
// to environment variables with underscores, e.g. google.api_key is read from
// VOLKSFESTE_GOOGLE_API_KEY.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vukdaten/volksfeste/internal/dashboard"
	"github.com/vukdaten/volksfeste/internal/enrich"
	"github.com/vukdaten/volksfeste/internal/geocode"
	"github.com/vukdaten/volksfeste/internal/redirect"
	"github.com/vukdaten/volksfeste/internal/scraper"
	"github.com/vukdaten/volksfeste/internal/sheet"
	"github.com/vukdaten/volksfeste/internal/storage"
)

// EnvPrefix prefixes every environment variable
const EnvPrefix = "VOLKSFESTE"

// Default file names of the processing chain
const (
	DefaultPLZInput     = "fehlende plz.csv"
	DefaultPLZOutput    = "PLZ_ergänzt.csv"
	DefaultListing      = "volksfeste.xlsx"
	DefaultDetails      = "volksfeste_mit_details.xlsx"
	DefaultClean        = "volksfeste_mit_details_clean.xlsx"
	DefaultMaps         = "volksfeste_mit_details_mit_maps.xlsx"
	DefaultWebsites     = "volksfeste_mit_details_mit_websites.xlsx"
	DefaultCoordinates  = dashboard.DefaultInput
	DefaultCacheDir     = "cache"
	DefaultProgressFile = storage.DefaultProgressFile
	defaultConfigName   = "volksfeste"
)

// Config stores all configuration for the application.
type Config struct {
	CacheDir     string `mapstructure:"cache_dir"`
	ProgressFile string `mapstructure:"progress_file"`

	Google    Google    `mapstructure:"google"`
	Nominatim Nominatim `mapstructure:"nominatim"`
	Scraper   Scraper   `mapstructure:"scraper"`
	Redirect  Redirect  `mapstructure:"redirect"`

	PLZ     Files   `mapstructure:"plz"`
	Geocode Geocode `mapstructure:"geocode"`
	Buttons Buttons `mapstructure:"buttons"`
	Resolve Resolve `mapstructure:"resolve"`
	Scrape  Files   `mapstructure:"scrape"`
	Details Details `mapstructure:"details"`
	Serve   Serve   `mapstructure:"serve"`

	// Fallback maps city names to postal codes when the lookup fails
	Fallback map[string]string `mapstructure:"fallback"`
}

type Google struct {
	APIKey   string        `mapstructure:"api_key"`
	URL      string        `mapstructure:"url"`
	Interval time.Duration `mapstructure:"interval"`
	Retries  int           `mapstructure:"retries"`
}

type Nominatim struct {
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Interval  time.Duration `mapstructure:"interval"`
	Retries   int           `mapstructure:"retries"`
}

type Scraper struct {
	BaseURL  string        `mapstructure:"base_url"`
	Interval time.Duration `mapstructure:"interval"`
	Retries  int           `mapstructure:"retries"`
}

type Redirect struct {
	Attempts int           `mapstructure:"attempts"`
	Pause    time.Duration `mapstructure:"pause"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Files struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
}

type Geocode struct {
	Files     `mapstructure:",squash"`
	SaveEvery int `mapstructure:"save_every"`
}

type Buttons struct {
	Files  `mapstructure:",squash"`
	Column string `mapstructure:"column"`
	Label  string `mapstructure:"label"`
}

type Resolve struct {
	Files     `mapstructure:",squash"`
	SaveEvery int `mapstructure:"save_every"`
}

type Details struct {
	Files        `mapstructure:",squash"`
	RefreshEvery int           `mapstructure:"refresh_every"`
	RetryWait    time.Duration `mapstructure:"retry_wait"`
}

type Serve struct {
	Input string `mapstructure:"input"`
	Addr  string `mapstructure:"addr"`
}

// New returns a viper instance with defaults and environment lookup set up.
// Flags are bound to it by the CLI before Load is called.
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cache_dir", DefaultCacheDir)
	v.SetDefault("progress_file", DefaultProgressFile)

	v.SetDefault("google.api_key", "")
	v.SetDefault("google.url", geocode.GoogleURL)
	v.SetDefault("google.interval", geocode.GoogleInterval)
	v.SetDefault("google.retries", geocode.DefaultRetries)

	v.SetDefault("nominatim.url", geocode.NominatimURL)
	v.SetDefault("nominatim.user_agent", geocode.NominatimUserAgent)
	v.SetDefault("nominatim.interval", geocode.NominatimInterval)
	v.SetDefault("nominatim.retries", geocode.DefaultRetries)

	v.SetDefault("scraper.base_url", scraper.BaseURL)
	v.SetDefault("scraper.interval", scraper.DefaultInterval)
	v.SetDefault("scraper.retries", scraper.DefaultRetries)

	v.SetDefault("redirect.attempts", redirect.DefaultAttempts)
	v.SetDefault("redirect.pause", redirect.DefaultPause)
	v.SetDefault("redirect.interval", redirect.DefaultInterval)
	v.SetDefault("redirect.timeout", redirect.Timeout)

	v.SetDefault("plz.input", DefaultPLZInput)
	v.SetDefault("plz.output", DefaultPLZOutput)

	v.SetDefault("geocode.input", DefaultMaps)
	v.SetDefault("geocode.output", DefaultCoordinates)
	v.SetDefault("geocode.save_every", enrich.DefaultCoordinateSaveEvery)

	v.SetDefault("buttons.input", DefaultMaps)
	v.SetDefault("buttons.output", DefaultWebsites)
	v.SetDefault("buttons.column", sheet.DefaultButtonColumn)
	v.SetDefault("buttons.label", sheet.DefaultButtonLabel)

	v.SetDefault("resolve.input", DefaultClean)
	v.SetDefault("resolve.output", DefaultMaps)
	v.SetDefault("resolve.save_every", enrich.DefaultRedirectSaveEvery)

	v.SetDefault("scrape.output", DefaultDetails)

	v.SetDefault("details.input", DefaultListing)
	v.SetDefault("details.output", DefaultDetails)
	v.SetDefault("details.refresh_every", enrich.DefaultRefreshEvery)
	v.SetDefault("details.retry_wait", enrich.DefaultRetryWait)

	v.SetDefault("serve.input", DefaultCoordinates)
	v.SetDefault("serve.addr", dashboard.DefaultAddr)

	v.SetDefault("fallback", geocode.DefaultFallback)

	return v
}

// Load reads the config file, if any, and decodes all settings. An explicit
// file must exist; the default volksfeste.yaml is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
