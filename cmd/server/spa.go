package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// frontend serves the built browser bundle. Paths that resolve to a
// real file inside the bundle are served as-is; everything else gets
// index.html so client-side routes like /employees or /unauthorized
// survive a hard reload.
type frontend struct {
	dir   string
	files http.Handler
}

func newFrontend(dir string) frontend {
	return frontend{dir: dir, files: http.FileServer(http.Dir(dir))}
}

func (f frontend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	// Resolve against the bundle root only; a cleaned path cannot
	// escape it.
	rel := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	if info, err := os.Stat(filepath.Join(f.dir, rel)); err == nil && !info.IsDir() {
		f.files.ServeHTTP(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(f.dir, "index.html"))
}
