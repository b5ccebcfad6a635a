package validation

import (
	"sort"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

func sortedKeys(rec domain.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
