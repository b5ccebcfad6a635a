package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// HandleUpdateById handles PATCH requests to partially update a document by ID
func (h *Handler) HandleUpdateById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	h.logger.Debugf("handleUpdateById called for collection '%s', document '%s'", collName, docId)

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	var updates domain.Record
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.logger.Errorf("decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := coll.Update(docId, updates)
	if err != nil {
		h.logger.Errorf("update failed for document '%s' in collection '%s': %v", docId, collName, err)
		WriteError(w, err)
		return
	}

	h.logger.Infof("updated document '%s' in collection '%s'", docId, collName)
	writeJSON(w, http.StatusOK, doc)
}
