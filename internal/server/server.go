// Package server runs the HTTP listener for the configured address.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/f4ah6o/devserve/internal/config"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server owns the listener and the http.Server.
type Server struct {
	cfg  config.ServerConfig
	log  logrus.FieldLogger
	http *http.Server
	ln   net.Listener
}

// New creates a Server for cfg. Nothing is bound until Listen is called.
func New(cfg config.ServerConfig, handler http.Handler, log logrus.FieldLogger) *Server {
	hs := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
	}
	if !cfg.Threaded {
		hs.SetKeepAlivesEnabled(false)
	}
	return &Server{cfg: cfg, log: log, http: hs}
}

// Listen binds the configured address and port.
// In non-threaded mode the listener admits one connection at a time.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.cfg.Address, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if !s.cfg.Threaded {
		ln = netutil.LimitListener(ln, 1)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Port returns the bound port, which differs from the configured one when
// port 0 was requested.
func (s *Server) Port() int {
	if tcp, ok := s.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.cfg.Port
}

// URL is the base URL clients should use.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s/", net.JoinHostPort(s.cfg.Address, strconv.Itoa(s.Port())))
}

// Serve handles connections until ctx is cancelled, then shuts down
// gracefully. It calls Listen first if that has not happened yet.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := s.http.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.log.Debug("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return eg.Wait()
}
