// Package config resolves runtime settings from an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "APISURFACE_"

const (
	DefaultCacheSize = 256
	DefaultDebounce  = 250 * time.Millisecond
	DefaultEnvFile   = ".env"
)

type Config struct {
	LogLevel    slog.Level
	LogFormat   string
	RootName    string
	Concurrency int
	CacheSize   int
	Debounce    time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:    slog.LevelInfo,
		LogFormat:   "text",
		Concurrency: runtime.GOMAXPROCS(0),
		CacheSize:   DefaultCacheSize,
		Debounce:    DefaultDebounce,
	}
}

// Load reads envFile (if it exists) without overriding variables already set,
// then parses APISURFACE_* variables over the defaults. An explicitly named
// env file that does not exist is an error; the default ".env" is optional.
func Load(envFile string) (Config, error) {
	explicit := strings.TrimSpace(envFile) != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv parses settings through lookup, which lets tests avoid the process environment.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if raw, ok := lookupTrimmed(lookup, "LOG_LEVEL"); ok {
		level, err := ParseLevel(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	if raw, ok := lookupTrimmed(lookup, "LOG_FORMAT"); ok {
		format, err := ParseFormat(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.LogFormat = format
	}
	if raw, ok := lookupTrimmed(lookup, "ROOT_NAME"); ok {
		cfg.RootName = raw
	}
	if raw, ok := lookupTrimmed(lookup, "CONCURRENCY"); ok {
		n, err := positiveInt("CONCURRENCY", raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Concurrency = n
	}
	if raw, ok := lookupTrimmed(lookup, "CACHE_SIZE"); ok {
		n, err := positiveInt("CACHE_SIZE", raw)
		if err != nil {
			return Config{}, err
		}
		cfg.CacheSize = n
	}
	if raw, ok := lookupTrimmed(lookup, "WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%sWATCH_DEBOUNCE: invalid duration %q", envPrefix, raw)
		}
		cfg.Debounce = d
	}
	return cfg, nil
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

// ParseFormat accepts text and json.
func ParseFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "text", "json":
		return format, nil
	default:
		return "", fmt.Errorf("invalid log format %q (want text or json)", raw)
	}
}

func lookupTrimmed(lookup func(string) (string, bool), name string) (string, bool) {
	raw, ok := lookup(envPrefix + name)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func positiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s%s: must be a positive integer, got %q", envPrefix, name, raw)
	}
	return n, nil
}
