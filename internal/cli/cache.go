package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/carrierscope/internal/cache"
)

var (
	purgeOlderThan time.Duration
	purgeMaxKeep   int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the upstream page cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.CacheDir == "" {
			cmd.Println("cache disabled")
			return nil
		}
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			return err
		}
		cmd.Printf("cleared %s\n", cfg.CacheDir)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove old cached pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.CacheDir == "" {
			cmd.Println("cache disabled")
			return nil
		}
		byAge, err := cache.PurgeByAge(cfg.CacheDir, purgeOlderThan)
		if err != nil {
			return err
		}
		byCount, err := cache.EnforceMaxEntries(cfg.CacheDir, purgeMaxKeep)
		if err != nil {
			return err
		}
		cmd.Printf("removed %d entries\n", byAge+byCount)
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 24*time.Hour, "remove entries saved longer ago than this")
	cachePurgeCmd.Flags().IntVar(&purgeMaxKeep, "max-entries", 0, "keep at most this many entries; 0 keeps all")
	cacheCmd.AddCommand(cacheClearCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
