package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the generic success reply. It is returned for every
// non-fatal outcome of a mutating operation, including requests that
// referenced entities which do not exist.
type envelope struct {
	Status      int    `json:"status"`
	Description string `json:"description"`
}

var envelopeOK = envelope{Status: http.StatusOK, Description: "OK"}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("write response failed", "error", err)
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, envelopeOK)
}
