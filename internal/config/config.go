// Package config builds the server configuration from defaults, the
// environment, config files and command-line arguments.
package config

import (
	"os"
	"strconv"
)

// Default values used when nothing else sets a field.
const (
	DefaultAddress  = "localhost"
	DefaultPort     = 8000
	DefaultMaxAge   = 2
	DefaultLogLevel = "info"
)

// MaxAgeDisabled turns off the Cache-Control header.
const MaxAgeDisabled = -1

// ServerConfig holds every setting of a running server.
// It is built once at startup and must not be modified afterwards.
type ServerConfig struct {
	// Address is the host or IP the listener binds to.
	Address string `toml:"address" yaml:"address"`
	// Port is the TCP port. Zero asks the kernel for a free port.
	Port int `toml:"port" yaml:"port"`
	// CORS enables the Cross-Origin-Embedder-Policy and Cross-Origin-Opener-Policy headers.
	CORS bool `toml:"cors" yaml:"cors"`
	// Threaded serves connections concurrently. When false, one connection is handled at a time.
	Threaded bool `toml:"threaded" yaml:"threaded"`
	// Directory is the root folder files are served from.
	Directory string `toml:"directory" yaml:"directory"`
	// MaxAge is the Cache-Control max-age in seconds, or MaxAgeDisabled.
	MaxAge int `toml:"maxage" yaml:"maxage"`
	// CheckLastModified answers 304 when If-Modified-Since matches Last-Modified.
	CheckLastModified bool `toml:"checklastmodified" yaml:"checklastmodified"`
	// Dump logs every request.
	Dump bool `toml:"dump" yaml:"dump"`
	// Open launches the system browser on the served URL after startup.
	Open bool `toml:"open" yaml:"open"`
	// LogLevel is a logrus level name.
	LogLevel string `toml:"loglevel" yaml:"loglevel"`
	// MimeTypes maps extra extensions (".ext") to content types.
	MimeTypes map[string]string `toml:"mime" yaml:"mime"`
}

// Default returns the configuration used when no option is given.
// Directory is the current working directory, or "." if it cannot be determined.
func Default() ServerConfig {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return ServerConfig{
		Address:           DefaultAddress,
		Port:              DefaultPort,
		CORS:              true,
		Threaded:          true,
		Directory:         dir,
		MaxAge:            DefaultMaxAge,
		CheckLastModified: true,
		LogLevel:          DefaultLogLevel,
	}
}

// CacheControl returns the Cache-Control value and whether it should be sent.
func (c ServerConfig) CacheControl() (string, bool) {
	if c.MaxAge == MaxAgeDisabled {
		return "", false
	}
	return "max-age=" + strconv.Itoa(c.MaxAge), true
}
