// Package cli implements the carrierscope command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/carrierscope/internal/app"
)

var (
	configPath  string
	envFiles    []string
	verbose     bool
	databaseURL string
	cacheDir    string
	noCache     bool
	userAgent   string
	fetchRPS    float64
)

var rootCmd = &cobra.Command{
	Use:           "carrierscope",
	Short:         "Look up FMCSA carrier, safety, insurance and register data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogging(cmd)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON config file")
	pf.StringSliceVar(&envFiles, "env-file", []string{".env", ".env.local"}, "dotenv files loaded before reading the environment")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	pf.StringVar(&databaseURL, "database-url", "", "PostgreSQL URL; in-memory storage when empty")
	pf.StringVar(&cacheDir, "cache-dir", app.DefaultCacheDir, "directory for cached upstream pages")
	pf.BoolVar(&noCache, "no-cache", false, "disable the page cache")
	pf.StringVar(&userAgent, "user-agent", "", "override the browser User-Agent sent upstream")
	pf.Float64Var(&fetchRPS, "rps", app.DefaultFetchRPS, "upstream requests per second; 0 disables pacing")
}

// Execute runs the root command until it finishes or ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupLogging(cmd *cobra.Command) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadConfig layers defaults, the config file, the environment and finally
// any flags set on the command line.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}
	cfg := app.DefaultConfig()
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	flags := cmd.Flags()
	if flags.Changed("database-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if noCache {
		cfg.CacheDir = ""
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if flags.Changed("rps") {
		cfg.FetchRPS = fetchRPS
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return cfg, nil
}

func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd, cfg)
}

func newApp(cmd *cobra.Command, cfg app.Config) (*app.App, error) {
	return app.New(cmd.Context(), cfg)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

