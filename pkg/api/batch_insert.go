package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// BatchInsertRequest represents the request body for batch insert operations
type BatchInsertRequest struct {
	Documents []domain.Record `json:"documents"`
}

// BatchInsertResponse represents the response for batch insert operations
type BatchInsertResponse struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	InsertedCount int               `json:"inserted_count"`
	Collection    string            `json:"collection"`
	Documents     []domain.Document `json:"documents"`
}

// HandleBatchInsert handles POST requests to insert multiple documents into
// collections. Either every document is stored or none is.
func (h *Handler) HandleBatchInsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	h.logger.Debugf("handleBatchInsert called for collection '%s'", collName)

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	var req BatchInsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Errorf("decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Documents) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "No documents provided")
		return
	}

	if len(req.Documents) > MaxBatchSize {
		h.logger.Errorf("too many documents for batch insert: %d", len(req.Documents))
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d documents allowed per batch", MaxBatchSize))
		return
	}

	docs, err := coll.AddMany(req.Documents)
	if err != nil {
		h.logger.Errorf("batch insert failed for collection '%s': %v", collName, err)
		WriteError(w, err)
		return
	}

	response := BatchInsertResponse{
		Success:       true,
		Message:       "Batch insert completed successfully",
		InsertedCount: len(docs),
		Collection:    collName,
		Documents:     docs,
	}
	writeJSON(w, http.StatusCreated, response)

	h.logger.Infof("batch insert successful for collection '%s', inserted %d documents", collName, len(docs))
}
