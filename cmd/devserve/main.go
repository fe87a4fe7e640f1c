// Package main provides a static file server for local development.
//
// It serves a directory with strict cross-origin isolation headers so that
// pages using SharedArrayBuffer or threaded WebAssembly work on localhost.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/f4ah6o/devserve/internal/config"
	"github.com/f4ah6o/devserve/internal/mimetable"
	"github.com/f4ah6o/devserve/internal/responder"
	"github.com/f4ah6o/devserve/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := loadConfig(args)
	var syntaxErr *config.SyntaxError
	switch {
	case errors.Is(err, config.ErrHelp):
		fmt.Fprintln(stdout, config.Usage)
		return 0
	case errors.As(err, &syntaxErr):
		color.New(color.FgRed).Fprintln(stderr, syntaxErr.Error())
		return 1
	case err != nil:
		log.WithError(err).Error("Invalid configuration")
		return 1
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	absDir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		log.WithError(err).Error("Failed to resolve directory")
		return 1
	}
	if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
		log.WithField("directory", absDir).Error("Directory does not exist")
		return 1
	}
	cfg.Directory = absDir

	types := mimetable.New(cfg.MimeTypes)
	srv := server.New(cfg, responder.NewHandler(cfg, types, log), log)
	if err := srv.Listen(); err != nil {
		log.WithError(err).Error("Failed to start server")
		return 1
	}

	color.New(color.FgGreen).Fprintln(stdout, banner(cfg, srv.Port()))
	log.WithFields(logrus.Fields{
		"directory":         cfg.Directory,
		"checklastmodified": cfg.CheckLastModified,
		"dump":              cfg.Dump,
	}).Debug("Server configured")

	if cfg.Open {
		if err := openBrowser(srv.URL()); err != nil {
			log.WithError(err).Warn("Failed to open browser")
		}
	}

	if err := srv.Serve(ctx); err != nil {
		log.WithError(err).Error("Server stopped")
		return 1
	}
	return 0
}

// loadConfig layers defaults, .env and DEVSERVE_* variables, then args.
func loadConfig(args []string) (config.ServerConfig, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.ServerConfig{}, err
	}
	cfg, err := config.FromEnv(os.LookupEnv, config.Default())
	if err != nil {
		return cfg, err
	}
	return config.Parse(args, cfg)
}

func banner(cfg config.ServerConfig, port int) string {
	return fmt.Sprintf("Serving http://%s:%d/ [CORS:%t THREADS:%t MAXAGE:%d]",
		cfg.Address, port, cfg.CORS, cfg.Threaded, cfg.MaxAge)
}
