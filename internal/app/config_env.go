package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when they are set. This lets env take precedence over a config file while
// flags, applied afterwards, stay highest.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := listenFromEnv(); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("REGISTER_SCHEDULE"); v != "" {
		cfg.RegisterSchedule = v
	}
	envDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")
	envDuration(&cfg.BatchItemTimeout, "BATCH_ITEM_TIMEOUT")
	envFloat(&cfg.FetchRPS, "FETCH_RPS")
	envInt(&cfg.FetchMaxConcurrent, "FETCH_MAX_CONCURRENT")
	envInt(&cfg.BatchWorkers, "BATCH_WORKERS")
	envInt(&cfg.CacheMaxEntries, "CACHE_MAX_ENTRIES")
	if b, ok := envBool("CACHE_CLEAR"); ok {
		cfg.CacheClear = b
	}
	if b, ok := envBool("VERBOSE"); ok {
		cfg.Verbose = b
	}
}

// listenFromEnv prefers LISTEN_ADDR and falls back to a bare PORT.
func listenFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		return v
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		return ":" + p
	}
	return ""
}

func envDuration(dst *time.Duration, key string) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			*dst = d
		}
	}
}

func envInt(dst *int, key string) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, key string) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
