package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// CollectionsResponse lists the configured collections.
type CollectionsResponse struct {
	Collections []string `json:"collections"`
}

// CountResponse carries the size of one collection.
type CountResponse struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
}

// HandleListCollections handles GET requests listing the configured collections
func (h *Handler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	names := h.store.Names()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, CollectionsResponse{Collections: names})
}

// HandleCount handles GET requests for the number of documents in a collection
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	collName := mux.Vars(r)["coll"]

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	n, err := coll.Count()
	if err != nil {
		h.logger.Errorf("count failed for collection '%s': %v", collName, err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Collection: collName, Count: n})
}

// HandleClear handles DELETE requests removing every document of a collection
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	collName := mux.Vars(r)["coll"]

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	if err := coll.Clear(); err != nil {
		h.logger.Errorf("clear failed for collection '%s': %v", collName, err)
		WriteError(w, err)
		return
	}

	h.logger.Infof("cleared collection '%s'", collName)
	w.WriteHeader(http.StatusNoContent)
}
