package shared

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// FormInt reads a required integer form field.
func FormInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.FormValue(name))
}

// QueryInt reads an optional integer query parameter, falling back to
// def when absent or unparseable.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// PathInt reads an integer route parameter.
func PathInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}
