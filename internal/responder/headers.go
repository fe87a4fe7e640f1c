package responder

import (
	"net/http"

	"github.com/f4ah6o/devserve/internal/config"
)

// HeaderPolicy is the set of headers added to every response.
type HeaderPolicy struct {
	// CrossOriginIsolation adds COEP require-corp and COOP same-origin.
	CrossOriginIsolation bool
	// CacheControl is sent as Cache-Control when not empty.
	CacheControl string
}

// PolicyFromConfig derives the header policy from the server configuration.
func PolicyFromConfig(cfg config.ServerConfig) HeaderPolicy {
	cc, _ := cfg.CacheControl()
	return HeaderPolicy{
		CrossOriginIsolation: cfg.CORS,
		CacheControl:         cc,
	}
}

// Apply sets the policy headers on h.
func (p HeaderPolicy) Apply(h http.Header) {
	if p.CrossOriginIsolation {
		h.Set("Cross-Origin-Embedder-Policy", "require-corp")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
	}
	if p.CacheControl != "" {
		h.Set("Cache-Control", p.CacheControl)
	}
}

// InjectHeaders applies p right before the status line of every response
// produced by next is written, including error responses that clear
// caching headers on their way out.
func InjectHeaders(p HeaderPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hw := &headerWriter{ResponseWriter: w, policy: p}
		next.ServeHTTP(hw, r)
		if !hw.wroteHeader {
			hw.WriteHeader(http.StatusOK)
		}
	})
}

type headerWriter struct {
	http.ResponseWriter
	policy      HeaderPolicy
	wroteHeader bool
}

func (hw *headerWriter) WriteHeader(code int) {
	// 1xx responses are informational and followed by the real one.
	if !hw.wroteHeader && code >= http.StatusOK {
		hw.wroteHeader = true
		hw.policy.Apply(hw.Header())
	}
	hw.ResponseWriter.WriteHeader(code)
}

func (hw *headerWriter) Write(b []byte) (int, error) {
	if !hw.wroteHeader {
		hw.WriteHeader(http.StatusOK)
	}
	return hw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (hw *headerWriter) Unwrap() http.ResponseWriter {
	return hw.ResponseWriter
}
