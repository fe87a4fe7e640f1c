// Package responder serves static files with a fixed response header policy.
//
// Regular files are read whole and answered directly, with an optional
// conditional GET on Last-Modified. Everything else (missing paths,
// directories without an index, redirects) is delegated to http.FileServer.
package responder

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/f4ah6o/devserve/internal/config"
	"github.com/f4ah6o/devserve/internal/mimetable"
)

// indexFiles are tried in order for a directory path ending in "/".
var indexFiles = []string{"index.html", "index.htm"}

// RequestContext is the per-request state of the responder.
type RequestContext struct {
	// RequestPath is the URL path as received.
	RequestPath string
	// ResolvedPath is the local file the request maps to.
	ResolvedPath string
	// IfModifiedSince is the raw If-Modified-Since header, empty if absent.
	IfModifiedSince string
}

// Responder is the static file handler. It holds no per-request state and
// is safe for concurrent use.
type Responder struct {
	root              string
	checkLastModified bool
	types             *mimetable.Table
	fallback          http.Handler
	log               logrus.FieldLogger
}

// New creates a Responder serving cfg.Directory.
func New(cfg config.ServerConfig, types *mimetable.Table, log logrus.FieldLogger) *Responder {
	return &Responder{
		root:              cfg.Directory,
		checkLastModified: cfg.CheckLastModified,
		types:             types,
		fallback:          http.FileServer(http.Dir(cfg.Directory)),
		log:               log,
	}
}

// NewHandler wires the full handler chain for cfg: request dump (when
// enabled), header injection and the Responder.
func NewHandler(cfg config.ServerConfig, types *mimetable.Table, log logrus.FieldLogger) http.Handler {
	var h http.Handler = New(cfg, types, log)
	h = InjectHeaders(PolicyFromConfig(cfg), h)
	if cfg.Dump {
		h = Dump(log, h)
	}
	return h
}

func (rs *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Unsupported method ("+r.Method+")", http.StatusNotImplemented)
		return
	}

	rc := rs.resolve(r)
	info, err := os.Stat(rc.ResolvedPath)
	if err == nil && strings.HasSuffix(rc.RequestPath, "/") {
		// A trailing slash names a directory. Files requested that way are
		// left to the fallback, which redirects them.
		if !info.IsDir() {
			rs.delegate(w, r)
			return
		}
		rc.ResolvedPath, info, err = findIndex(rc.ResolvedPath)
	}
	if err != nil || !info.Mode().IsRegular() {
		rs.delegate(w, r)
		return
	}
	rs.serveFile(w, r, rc, info)
}

// delegate hands the request to the fallback file server. With conditional
// GET off, If-Modified-Since is dropped so listings never answer 304.
func (rs *Responder) delegate(w http.ResponseWriter, r *http.Request) {
	if !rs.checkLastModified && r.Header.Get("If-Modified-Since") != "" {
		r = r.Clone(r.Context())
		r.Header.Del("If-Modified-Since")
	}
	rs.fallback.ServeHTTP(w, r)
}

// resolve maps the URL path onto the root directory. The path is cleaned
// against "/" first so it cannot climb out of the root.
func (rs *Responder) resolve(r *http.Request) RequestContext {
	clean := path.Clean("/" + r.URL.Path)
	return RequestContext{
		RequestPath:     r.URL.Path,
		ResolvedPath:    filepath.Join(rs.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))),
		IfModifiedSince: r.Header.Get("If-Modified-Since"),
	}
}

func (rs *Responder) serveFile(w http.ResponseWriter, r *http.Request, rc RequestContext, info os.FileInfo) {
	lastModified := info.ModTime().UTC().Format(http.TimeFormat)

	// Exact string comparison, not a date comparison.
	if rs.checkLastModified && rc.IfModifiedSince == lastModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, err := os.ReadFile(rc.ResolvedPath)
	if err != nil {
		rs.delegate(w, r)
		return
	}

	h := w.Header()
	h.Set("Content-Type", rs.types.Lookup(rc.ResolvedPath))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Last-Modified", lastModified)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(data); err != nil {
		rs.log.WithError(err).WithField("path", rc.RequestPath).Debug("failed to write response body")
	}
}

func findIndex(dir string) (string, os.FileInfo, error) {
	var err error
	for _, name := range indexFiles {
		p := filepath.Join(dir, name)
		var info os.FileInfo
		if info, err = os.Stat(p); err == nil {
			return p, info, nil
		}
	}
	return dir, nil, err
}
