package api

import (
	"encoding/json"
	"net/http"

	"github.com/josefjadrny/go-idb/pkg/collection"
	"github.com/josefjadrny/go-idb/pkg/database"
	"github.com/josefjadrny/go-idb/pkg/logging"
)

// MaxBatchSize caps the number of documents accepted by one batch insert.
const MaxBatchSize = 1000

// Handler provides HTTP handlers for the database API
type Handler struct {
	store  database.Store
	logger logging.Logger
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(store database.Store, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// collection resolves the collection named in the request, writing a 404 when
// it is not configured.
func (h *Handler) collection(w http.ResponseWriter, name string) (*collection.Collection, bool) {
	c, err := h.store.Collection(name)
	if err != nil {
		h.logger.Errorf("collection '%s' not found: %v", name, err)
		WriteError(w, err)
		return nil, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
