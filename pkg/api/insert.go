package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// HandleInsert handles POST requests to insert documents into collections
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	h.logger.Debugf("handleInsert called for collection '%s'", collName)

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	var rec domain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.logger.Errorf("decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := coll.Add(rec)
	if err != nil {
		h.logger.Errorf("insert failed for collection '%s': %v", collName, err)
		WriteError(w, err)
		return
	}

	h.logger.Infof("inserted document '%s' into collection '%s'", doc.ID(), collName)
	writeJSON(w, http.StatusCreated, doc)
}
