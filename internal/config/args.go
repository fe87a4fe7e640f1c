package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
)

// ErrHelp is returned by Parse when --help is given.
var ErrHelp = errors.New("help requested")

// Usage is printed for --help.
const Usage = `Usage: devserve [PORT] [--address ADDRESS]=localhost [--port PORT]=8000
                [--directory DIR]=CWD [--cors 0|1]=1 [--threaded 0|1]=1
                [--maxage SECONDS]=2 [--checklastmodified 0|1]=1
                [--dump 0|1]=0 [--open 0|1]=0 [--loglevel LEVEL]=info
                [--config FILE.toml|FILE.yaml]`

// SyntaxError reports the argument that could not be understood.
type SyntaxError struct {
	Token string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax error at '%s'", e.Token)
}

type option int

const (
	optHelp option = iota
	optPort
	optAddress
	optDirectory
	optCORS
	optThreaded
	optMaxAge
	optCheckLastModified
	optDump
	optOpen
	optLogLevel
	optConfig
)

// options maps case-folded flag names to the option they set.
var options = map[string]option{
	"--help":              optHelp,
	"-help":               optHelp,
	"--port":              optPort,
	"-port":               optPort,
	"--address":           optAddress,
	"-address":            optAddress,
	"--directory":         optDirectory,
	"-d":                  optDirectory,
	"--cors":              optCORS,
	"-cors":               optCORS,
	"--threaded":          optThreaded,
	"-threaded":           optThreaded,
	"--maxage":            optMaxAge,
	"-maxage":             optMaxAge,
	"--checklastmodified": optCheckLastModified,
	"-checklastmodified":  optCheckLastModified,
	"--dump":              optDump,
	"-dump":               optDump,
	"--open":              optOpen,
	"-open":               optOpen,
	"--loglevel":          optLogLevel,
	"-loglevel":           optLogLevel,
	"--config":            optConfig,
	"-config":             optConfig,
}

// Parse applies command-line arguments (without the program name) on top of base.
//
// Flag names are matched case-insensitively and each takes exactly one value.
// The first bare integer is taken as the port unless a port was already given.
// A --config file is applied at its position, so later arguments override it.
//
// It returns ErrHelp for --help and a *SyntaxError for anything it cannot parse.
func Parse(args []string, base ServerConfig) (ServerConfig, error) {
	cfg := base
	fold := cases.Fold()
	hasPort := false

	for i := 0; i < len(args); i++ {
		tok := args[i]
		opt, ok := options[fold.String(tok)]
		if !ok {
			if !hasPort && !strings.HasPrefix(tok, "-") {
				if port, err := parsePort(tok); err == nil {
					cfg.Port = port
					hasPort = true
					continue
				}
			}
			return cfg, &SyntaxError{Token: tok}
		}
		if opt == optHelp {
			return cfg, ErrHelp
		}
		if i+1 >= len(args) {
			return cfg, &SyntaxError{Token: tok}
		}
		i++
		val := args[i]

		var err error
		switch opt {
		case optPort:
			cfg.Port, err = parsePort(val)
			hasPort = true
		case optAddress:
			cfg.Address = val
		case optDirectory:
			cfg.Directory = val
		case optCORS:
			cfg.CORS, err = parseOnOff(val)
		case optThreaded:
			cfg.Threaded, err = parseOnOff(val)
		case optMaxAge:
			cfg.MaxAge, err = strconv.Atoi(val)
		case optCheckLastModified:
			cfg.CheckLastModified, err = parseOnOff(val)
		case optDump:
			cfg.Dump, err = parseOnOff(val)
		case optOpen:
			cfg.Open, err = parseOnOff(val)
		case optLogLevel:
			_, err = logrus.ParseLevel(val)
			cfg.LogLevel = val
		case optConfig:
			if cfg, err = LoadFile(val, cfg); err != nil {
				return cfg, err
			}
		}
		if err != nil {
			return cfg, &SyntaxError{Token: val}
		}
	}
	return cfg, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

// parseOnOff accepts 1/on/true and 0/off/false in any case.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "true":
		return true, nil
	case "0", "off", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid on/off value %q", s)
}
