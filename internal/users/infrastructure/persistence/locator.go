package persistence

import (
	"log/slog"
	"os"
)

// DefaultStorePath is used when no candidate paths are configured.
const DefaultStorePath = "users_data.json"

// Location describes how the store path was chosen.
type Location struct {
	Path       string
	Found      bool
	Candidates []string
}

// Locate picks the first candidate that exists on disk. When none exists the
// first candidate is returned so that the store can later be created there.
func Locate(candidates []string, logger *slog.Logger) Location {
	if logger == nil {
		logger = slog.Default()
	}
	if len(candidates) == 0 {
		candidates = []string{DefaultStorePath}
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			logger.Info("user store located", "path", candidate)
			return Location{Path: candidate, Found: true, Candidates: candidates}
		}
	}

	logger.Warn("user store not found, using fallback path",
		"path", candidates[0],
		"candidates", candidates,
	)
	return Location{Path: candidates[0], Candidates: candidates}
}
