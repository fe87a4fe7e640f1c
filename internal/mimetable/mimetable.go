// Package mimetable maps file names to content types.
package mimetable

import (
	"mime"
	"sort"
	"strings"
)

// DefaultType is returned for names that match no entry.
const DefaultType = "application/octet-stream"

// Overrides win over every default and configured entry for the same suffix.
var Overrides = map[string]string{
	".js":   "application/javascript",
	".wasm": "application/wasm",
	".css":  "text/css",
	".svg":  "image/svg+xml",
	".ttf":  "font/ttf",
}

// defaults seeds the base layer. Extensions missing here still resolve
// through the system table of the mime package.
var defaults = map[string]string{
	".html":    "text/html; charset=utf-8",
	".htm":     "text/html; charset=utf-8",
	".txt":     "text/plain; charset=utf-8",
	".json":    "application/json",
	".map":     "application/json",
	".mjs":     "text/javascript; charset=utf-8",
	".png":     "image/png",
	".jpg":     "image/jpeg",
	".jpeg":    "image/jpeg",
	".gif":     "image/gif",
	".ico":     "image/vnd.microsoft.icon",
	".webp":    "image/webp",
	".woff":    "font/woff",
	".woff2":   "font/woff2",
	".otf":     "font/otf",
	".xml":     "text/xml; charset=utf-8",
	".pdf":     "application/pdf",
	".gz":      "application/gzip",
	".tar.gz":  "application/gzip",
	".zip":     "application/zip",
	".mp4":     "video/mp4",
	".webm":    "video/webm",
	".mp3":     "audio/mpeg",
	".ogg":     "audio/ogg",
	".wav":     "audio/wav",
	".data":    "application/octet-stream",
	".js.map":  "application/json",
	".css.map": "application/json",
}

// Table is an immutable extension to content-type mapping.
// It is safe for concurrent use.
type Table struct {
	types    map[string]string
	suffixes []string // reverse sorted, longest match first
}

// New builds a table from the built-in defaults, then extra, then Overrides.
// Keys of extra are normalized to lower case with a leading dot.
func New(extra map[string]string) *Table {
	types := make(map[string]string, len(defaults)+len(extra)+len(Overrides))
	for ext, typ := range defaults {
		types[ext] = typ
	}
	for ext, typ := range extra {
		types[normalize(ext)] = typ
	}
	for ext, typ := range Overrides {
		types[ext] = typ
	}

	suffixes := make([]string, 0, len(types))
	for ext := range types {
		suffixes = append(suffixes, ext)
	}
	// Longest first; ties broken in reverse lexical order for a stable walk.
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i]) != len(suffixes[j]) {
			return len(suffixes[i]) > len(suffixes[j])
		}
		return suffixes[i] > suffixes[j]
	})

	return &Table{types: types, suffixes: suffixes}
}

// Lookup returns the content type for a file name or path.
// The longest matching suffix wins. Names that match no entry fall back
// to the system table, then to DefaultType.
func (t *Table) Lookup(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range t.suffixes {
		if strings.HasSuffix(lower, ext) {
			return t.types[ext]
		}
	}
	if i := strings.LastIndexByte(lower, '.'); i >= 0 {
		if typ := mime.TypeByExtension(lower[i:]); typ != "" {
			return typ
		}
	}
	return DefaultType
}

func normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
