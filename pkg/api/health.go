package api

import (
	"net/http"

	idb "github.com/josefjadrny/go-idb"
)

// HealthResponse reports liveness together with the build version and the
// number of collections being served.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Collections int    `json:"collections"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     idb.Version,
		Collections: len(h.store.Names()),
	})
}
