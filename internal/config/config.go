package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/termfx/hlebhint/internal/callshape"
	"github.com/termfx/hlebhint/internal/framework"
)

// EnvFile is the optional per-project settings file
const EnvFile = ".hlebhint.env"

// DefaultCompletionLimit caps completion lists
const DefaultCompletionLimit = 5000

// DefaultExclude lists scan globs skipped unless overridden
var DefaultExclude = []string{"vendor/**", "node_modules/**", "storage/**"}

// Config holds the application's configuration.
type Config struct {
	Marker             string
	RecheckProbability float64
	PrefixDepth        int
	CompletionLimit    int // 0 = unlimited
	Workers            int
	Exclude            []string
	DB                 string // sqlite path or libsql URL, empty disables persistence
	LibsqlAuthToken    string
	Debug              bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Marker:             framework.DefaultMarker,
		RecheckProbability: framework.DefaultRecheckProbability,
		PrefixDepth:        callshape.DefaultPrefixDepth,
		CompletionLimit:    DefaultCompletionLimit,
		Workers:            runtime.NumCPU(),
		Exclude:            append([]string(nil), DefaultExclude...),
	}
}

// LoadConfig reads defaults, then <root>/.hlebhint.env, then HLEBHINT_*
// environment variables. Invalid numbers keep the previous value.
func LoadConfig(root string) (*Config, error) {
	cfg := Default()

	values := map[string]string{}
	if root != "" {
		file, err := godotenv.Read(filepath.Join(root, EnvFile))
		switch {
		case err == nil:
			values = file
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read %s: %w", EnvFile, err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}

	if v := lookup("HLEBHINT_MARKER"); v != "" {
		cfg.Marker = v
	}
	if v := lookup("HLEBHINT_RECHECK_PROBABILITY"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil && p >= 0 && p <= 1 {
			cfg.RecheckProbability = p
		}
	}
	if v := lookup("HLEBHINT_PREFIX_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil && depth > 0 {
			cfg.PrefixDepth = depth
		}
	}
	if v := lookup("HLEBHINT_COMPLETION_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit >= 0 {
			cfg.CompletionLimit = limit
		}
	}
	if v := lookup("HLEBHINT_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil && workers > 0 {
			cfg.Workers = workers
		}
	}
	if v := lookup("HLEBHINT_EXCLUDE"); v != "" {
		cfg.Exclude = splitList(v)
	}
	cfg.DB = lookup("HLEBHINT_DB")
	cfg.LibsqlAuthToken = lookup("HLEBHINT_LIBSQL_AUTH_TOKEN")
	if v := lookup("HLEBHINT_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}

	return cfg, nil
}

// DetectorOptions turns the detection settings into detector options
func (c *Config) DetectorOptions() []framework.Option {
	return []framework.Option{
		framework.WithMarker(c.Marker),
		framework.WithRecheckProbability(c.RecheckProbability),
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
