package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeleteById handles DELETE requests to remove a specific document by ID
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	h.logger.Debugf("handleDeleteById called for collection '%s', document '%s'", collName, docId)

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	if err := coll.Remove(docId); err != nil {
		h.logger.Errorf("delete failed for document '%s' in collection '%s': %v", docId, collName, err)
		WriteError(w, err)
		return
	}

	h.logger.Infof("deleted document '%s' from collection '%s'", docId, collName)
	w.WriteHeader(http.StatusNoContent)
}
