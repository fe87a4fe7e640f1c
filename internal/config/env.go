package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "DEVSERVE_"

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) into the process environment. Variables already set are kept
// and a missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv applies DEVSERVE_* variables found through lookup on top of base.
// Pass os.LookupEnv in production.
func FromEnv(lookup func(string) (string, bool), base ServerConfig) (ServerConfig, error) {
	cfg := base

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var err error
	num := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || err != nil {
			return
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			err = fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, key, v, convErr)
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || err != nil {
			return
		}
		b, convErr := parseOnOff(v)
		if convErr != nil {
			err = fmt.Errorf("invalid %s%s value: %w", EnvPrefix, key, convErr)
			return
		}
		*dst = b
	}

	str("ADDRESS", &cfg.Address)
	str("DIRECTORY", &cfg.Directory)
	str("LOGLEVEL", &cfg.LogLevel)
	num("PORT", &cfg.Port)
	num("MAXAGE", &cfg.MaxAge)
	flag("CORS", &cfg.CORS)
	flag("THREADED", &cfg.Threaded)
	flag("CHECKLASTMODIFIED", &cfg.CheckLastModified)
	flag("DUMP", &cfg.Dump)
	flag("OPEN", &cfg.Open)
	if err != nil {
		return base, err
	}

	if _, lvlErr := logrus.ParseLevel(cfg.LogLevel); lvlErr != nil {
		return base, fmt.Errorf("invalid %sLOGLEVEL: %w", EnvPrefix, lvlErr)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return base, fmt.Errorf("invalid %sPORT value %d: out of range", EnvPrefix, cfg.Port)
	}
	return cfg, nil
}
