package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PHISHGUARD_"

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. With no
// arguments it reads ".env" in the current directory. Missing files are
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides c with PHISHGUARD_* variables found by lookup.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	strs := map[string]*string{
		"LISTEN":      &c.ListenAddress,
		"LISTS_DIR":   &c.ListsDir,
		"MODEL_DIR":   &c.ModelDir,
		"DB_DIR":      &c.DBDir,
		"PROXY":       &c.ProxyAddress,
		"USER_AGENT":  &c.UserAgent,
		"CORS_ORIGIN": &c.CORSOrigin,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"OFFLINE":      &c.Offline,
		"SAVE_TO_DB":   &c.SaveToDB,
		"EMBEDDED_TOR": &c.EmbeddedTor,
		"VERBOSE":      &c.Verbose,
		"LOG_JSON":     &c.LogJSON,
	}
	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, key, v)
		}
		*dst = b
	}

	durations := map[string]*time.Duration{
		"COLLECTOR_TIMEOUT":   &c.CollectorTimeout,
		"TOR_STARTUP_TIMEOUT": &c.TorStartupTimeout,
	}
	for key, dst := range durations {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, key, v)
		}
		*dst = d
	}

	if v, ok := lookup(EnvPrefix + "BATCH_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sBATCH_SIZE=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.BatchSize = n
	}
	if v, ok := lookup(EnvPrefix + "MAX_BODY_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_BODY_SIZE=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.MaxBodySize = n
	}

	return nil
}
