package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetById handles GET requests to retrieve a specific document by ID
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	h.logger.Debugf("handleGetById called for collection '%s', document '%s'", collName, docId)

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	doc, found, err := coll.Get(docId)
	if err != nil {
		h.logger.Errorf("get failed for document '%s' in collection '%s': %v", docId, collName, err)
		WriteError(w, err)
		return
	}
	if !found {
		WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("document with id %s not found in collection %s", docId, collName))
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
