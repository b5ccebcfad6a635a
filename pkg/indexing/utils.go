package indexing

import (
	"sort"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// sortedIDs returns ids in a stable order so rebuilt indexes are deterministic.
func sortedIDs(data map[string]domain.Record) []string {
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
