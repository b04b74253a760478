package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/cityreports/miniapp/internal/shared/infrastructure/security"
)

// StaticPages maps page routes to files inside the static directory.
var StaticPages = map[string]string{
	"/{$}":        "index.html",
	"/points":     "points.html",
	"/settings":   "settings.html",
	"/styles.css": "styles.css",
}

// staticFile serves one file from dir. Absent files answer a JSON 404.
func staticFile(dir, name string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, info, err := security.OpenInDir(dir, name)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.WarnContext(r.Context(), "static file rejected", "file", name, "error", err)
			}
			writeError(w, ErrNotFound)
			return
		}
		defer f.Close()
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
