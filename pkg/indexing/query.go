package indexing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// Wildcard is the reserved pattern character of string queries. It has no
// escape and cannot be searched for literally.
const Wildcard = "%"

// QueryKind tags the variant held by a Query.
type QueryKind int

const (
	QueryExact QueryKind = iota
	QueryPrefix
	QuerySuffix
	QueryContains
	QueryRange
	QueryBool
)

func (k QueryKind) String() string {
	switch k {
	case QueryExact:
		return "exact"
	case QueryPrefix:
		return "prefix"
	case QuerySuffix:
		return "suffix"
	case QueryContains:
		return "contains"
	case QueryRange:
		return "range"
	case QueryBool:
		return "bool"
	default:
		return "unknown"
	}
}

// RangeOp is the comparison of a numeric range query.
type RangeOp string

const (
	OpGreater      RangeOp = ">"
	OpGreaterEqual RangeOp = ">="
	OpLess         RangeOp = "<"
	OpLessEqual    RangeOp = "<="
)

// Query is a parsed pattern. Value holds the normalized operand: a string for
// the string kinds, a float64 for exact numbers and ranges, a bool for QueryBool.
type Query struct {
	Kind  QueryKind
	Op    RangeOp
	Value interface{}
}

func (q Query) String() string {
	if q.Kind == QueryRange {
		return fmt.Sprintf("%s %s %v", q.Kind, q.Op, q.Value)
	}
	return fmt.Sprintf("%s %v", q.Kind, q.Value)
}

// ParseQuery turns a query pattern into a Query for a field of type t.
func ParseQuery(t domain.FieldType, pattern string, caseInsensitive bool) (Query, error) {
	switch t {
	case domain.FieldTypeNumber:
		return parseNumberQuery(pattern)
	case domain.FieldTypeBoolean:
		switch pattern {
		case "true":
			return Query{Kind: QueryBool, Value: true}, nil
		case "false":
			return Query{Kind: QueryBool, Value: false}, nil
		}
		return Query{}, fmt.Errorf("%w: boolean query must be \"true\" or \"false\", got %q", domain.ErrQuerySyntax, pattern)
	case domain.FieldTypeString:
		return parseStringQuery(pattern, caseInsensitive), nil
	default:
		return Query{}, fmt.Errorf("%w: fields of type %q cannot be queried", domain.ErrQuerySyntax, t)
	}
}

func parseNumberQuery(pattern string) (Query, error) {
	trimmed := strings.TrimSpace(pattern)

	// Two-character operators first so ">=" is not read as ">" followed by "=".
	for _, op := range []RangeOp{OpGreaterEqual, OpLessEqual, OpGreater, OpLess} {
		if strings.HasPrefix(trimmed, string(op)) {
			n, err := parseNumber(strings.TrimSpace(trimmed[len(op):]))
			if err != nil {
				return Query{}, err
			}
			return Query{Kind: QueryRange, Op: op, Value: n}, nil
		}
	}

	n, err := parseNumber(trimmed)
	if err != nil {
		return Query{}, err
	}
	return Query{Kind: QueryExact, Value: n}, nil
}

func parseNumber(literal string) (float64, error) {
	n, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsNaN(n) {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrQuerySyntax, literal)
	}
	return n, nil
}

func parseStringQuery(pattern string, caseInsensitive bool) Query {
	if caseInsensitive {
		pattern = strings.ToLower(pattern)
	}

	leading := strings.HasPrefix(pattern, Wildcard)
	trailing := strings.HasSuffix(pattern, Wildcard)

	switch {
	case leading && trailing:
		term := ""
		if len(pattern) > 2*len(Wildcard) {
			term = pattern[len(Wildcard) : len(pattern)-len(Wildcard)]
		}
		return Query{Kind: QueryContains, Value: term}
	case trailing:
		return Query{Kind: QueryPrefix, Value: strings.TrimSuffix(pattern, Wildcard)}
	case leading:
		return Query{Kind: QuerySuffix, Value: strings.TrimPrefix(pattern, Wildcard)}
	default:
		return Query{Kind: QueryExact, Value: pattern}
	}
}
