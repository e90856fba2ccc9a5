package app

import (
	"time"

	"github.com/hyperifyio/carrierscope/internal/scrape"
)

// Defaults applied by DefaultConfig. ApplyFileConfig treats a field still
// holding its default as unset.
const (
	DefaultListenAddr       = ":3001"
	DefaultCacheDir         = ".carrierscope-cache"
	DefaultFetchRPS         = 2.0
	DefaultMaxConcurrent    = 8
	DefaultBatchWorkers     = 4
	DefaultBatchItemTimeout = 45 * time.Second
)

// Config holds runtime configuration for the application.
type Config struct {
	ListenAddr  string `validate:"required"`
	DatabaseURL string

	Sources scrape.Sources

	// Cache
	CacheDir        string
	CacheMaxAge     time.Duration `validate:"gte=0"`
	CacheMaxEntries int           `validate:"gte=0"`
	CacheClear      bool

	// Fetching
	UserAgent          string
	FetchRPS           float64 `validate:"gte=0"`
	FetchMaxConcurrent int     `validate:"gte=0,lte=256"`

	// Batch lookups
	BatchWorkers     int           `validate:"gte=1,lte=64"`
	BatchItemTimeout time.Duration `validate:"gte=0"`

	// RegisterSchedule is a cron expression for background register
	// refreshes. Empty disables them.
	RegisterSchedule string `validate:"omitempty,cronspec"`

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		ListenAddr:         DefaultListenAddr,
		Sources:            scrape.DefaultSources(),
		CacheDir:           DefaultCacheDir,
		FetchRPS:           DefaultFetchRPS,
		FetchMaxConcurrent: DefaultMaxConcurrent,
		BatchWorkers:       DefaultBatchWorkers,
		BatchItemTimeout:   DefaultBatchItemTimeout,
	}
}
