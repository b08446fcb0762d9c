package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

// Health reports ok when the document store can be read.
func Health(s store.DocumentStore, driver string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.Read(r.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "storage": driver})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": driver})
	}
}
