package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// Query parameters that control the result window rather than match a field.
const (
	paramSort   = "_sort"
	paramOrder  = "_order"
	paramLimit  = "_limit"
	paramOffset = "_offset"
)

// HandleFindAll handles GET requests to find documents. Every query parameter
// that is not a paging parameter is a field pattern; all must match.
func (h *Handler) HandleFindAll(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	h.logger.Debugf("handleFindAll called for collection '%s'", collName)

	coll, ok := h.collection(w, collName)
	if !ok {
		return
	}

	query, opts, err := parseFindParams(r.URL.Query())
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := coll.Find(query, opts)
	if err != nil {
		h.logger.Errorf("find failed for collection '%s': %v", collName, err)
		WriteError(w, err)
		return
	}

	if len(query) == 0 {
		h.logger.Debugf("found %d documents in collection '%s' (no filter)", len(docs), collName)
	} else {
		h.logger.Debugf("found %d documents in collection '%s' with filter %v", len(docs), collName, query)
	}

	writeJSON(w, http.StatusOK, docs)
}

func parseFindParams(params url.Values) (map[string]string, *domain.FindOptions, error) {
	opts := domain.DefaultFindOptions()
	query := make(map[string]string)

	for key, values := range params {
		if len(values) == 0 {
			continue
		}
		value := values[0] // Take first value if multiple provided

		switch key {
		case paramSort:
			opts.SortBy = value
		case paramOrder:
			switch value {
			case "asc", "":
			case "desc":
				opts.Descending = true
			default:
				return nil, nil, fmt.Errorf("invalid %s %q", paramOrder, value)
			}
		case paramLimit, paramOffset:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid %s %q", key, value)
			}
			if key == paramLimit {
				opts.Limit = n
			} else {
				opts.Offset = n
			}
		default:
			query[key] = value
		}
	}

	return query, opts, nil
}
