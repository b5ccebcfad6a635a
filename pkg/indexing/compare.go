package indexing

import (
	"fmt"
	"strings"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// rank orders values of different kinds so that Compare is total.
func rank(v interface{}) int {
	if v == nil {
		return 0
	}
	if _, ok := domain.ToFloat64(v); ok {
		return 2
	}
	switch v.(type) {
	case bool:
		return 1
	case string:
		return 3
	default:
		return 4
	}
}

// Compare orders two field values: numbers numerically, strings lexically,
// false before true. Values of different kinds are ordered by kind.
func Compare(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case 0:
		return 0
	case 1:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		af, _ := domain.ToFloat64(a)
		bf, _ := domain.ToFloat64(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// IntersectIDs returns the ids of acc that also appear in next, keeping the
// order of acc. Used for AND across queried fields.
func IntersectIDs(acc, next []string) []string {
	if len(acc) == 0 || len(next) == 0 {
		return nil
	}
	present := make(map[string]struct{}, len(next))
	for _, id := range next {
		present[id] = struct{}{}
	}
	var result []string
	for _, id := range acc {
		if _, ok := present[id]; ok {
			result = append(result, id)
		}
	}
	return result
}
