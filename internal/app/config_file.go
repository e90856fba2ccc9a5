package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/carrierscope/internal/scrape"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Server struct {
		Listen string `yaml:"listen" json:"listen"`
	} `yaml:"server" json:"server"`

	Database struct {
		URL string `yaml:"url" json:"url"`
	} `yaml:"database" json:"database"`

	Cache struct {
		Dir        string        `yaml:"dir" json:"dir"`
		MaxAge     time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxEntries int           `yaml:"maxEntries" json:"maxEntries"`
		Clear      bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Fetch struct {
		UserAgent     string  `yaml:"userAgent" json:"userAgent"`
		RPS           float64 `yaml:"rps" json:"rps"`
		MaxConcurrent int     `yaml:"maxConcurrent" json:"maxConcurrent"`
	} `yaml:"fetch" json:"fetch"`

	Batch struct {
		Workers     int           `yaml:"workers" json:"workers"`
		ItemTimeout time.Duration `yaml:"itemTimeout" json:"itemTimeout"`
	} `yaml:"batch" json:"batch"`

	Register struct {
		Schedule string `yaml:"schedule" json:"schedule"`
	} `yaml:"register" json:"register"`

	Sources scrape.Sources `yaml:"sources" json:"sources"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig. Durations are Go
// duration strings in YAML and nanoseconds in JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto cfg for fields that are
// still zero or at their default, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	if (cfg.ListenAddr == "" || cfg.ListenAddr == def.ListenAddr) && fc.Server.Listen != "" {
		cfg.ListenAddr = fc.Server.Listen
	}
	if cfg.DatabaseURL == "" && fc.Database.URL != "" {
		cfg.DatabaseURL = fc.Database.URL
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == def.CacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if cfg.CacheMaxEntries == 0 && fc.Cache.MaxEntries > 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}

	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if (cfg.FetchRPS == 0 || cfg.FetchRPS == def.FetchRPS) && fc.Fetch.RPS > 0 {
		cfg.FetchRPS = fc.Fetch.RPS
	}
	if (cfg.FetchMaxConcurrent == 0 || cfg.FetchMaxConcurrent == def.FetchMaxConcurrent) && fc.Fetch.MaxConcurrent > 0 {
		cfg.FetchMaxConcurrent = fc.Fetch.MaxConcurrent
	}

	if (cfg.BatchWorkers == 0 || cfg.BatchWorkers == def.BatchWorkers) && fc.Batch.Workers > 0 {
		cfg.BatchWorkers = fc.Batch.Workers
	}
	if (cfg.BatchItemTimeout == 0 || cfg.BatchItemTimeout == def.BatchItemTimeout) && fc.Batch.ItemTimeout > 0 {
		cfg.BatchItemTimeout = fc.Batch.ItemTimeout
	}
	if cfg.RegisterSchedule == "" && fc.Register.Schedule != "" {
		cfg.RegisterSchedule = fc.Register.Schedule
	}

	overlaySource(&cfg.Sources.Carrier, def.Sources.Carrier, fc.Sources.Carrier)
	overlaySource(&cfg.Sources.Email, def.Sources.Email, fc.Sources.Email)
	overlaySource(&cfg.Sources.Safety, def.Sources.Safety, fc.Sources.Safety)
	overlaySource(&cfg.Sources.Insurance, def.Sources.Insurance, fc.Sources.Insurance)
	overlaySource(&cfg.Sources.Register, def.Sources.Register, fc.Sources.Register)

	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

func overlaySource(dst *string, def, v string) {
	if (*dst == "" || *dst == def) && v != "" {
		*dst = v
	}
}
