package domain

import (
	"fmt"
)

// FindOptions controls ordering and paging of find/all results
type FindOptions struct {
	// Sorting
	SortBy     string `json:"sort_by,omitempty"`
	Descending bool   `json:"descending,omitempty"`

	// Limit/offset pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Common
	MaxLimit int `json:"max_limit,omitempty"` // Maximum allowed limit
}

// DefaultFindOptions returns options used by the HTTP API when the caller
// sends none.
func DefaultFindOptions() *FindOptions {
	return &FindOptions{
		MaxLimit: 1000,
	}
}

// Validate validates find options
func (fo *FindOptions) Validate() error {
	if fo.Limit < 0 {
		return fmt.Errorf("%w: limit cannot be negative", ErrQuerySyntax)
	}
	if fo.Offset < 0 {
		return fmt.Errorf("%w: offset cannot be negative", ErrQuerySyntax)
	}
	if fo.MaxLimit > 0 && fo.Limit > fo.MaxLimit {
		return fmt.Errorf("%w: limit %d exceeds maximum %d", ErrQuerySyntax, fo.Limit, fo.MaxLimit)
	}
	return nil
}

// Window returns the [start, end) bounds of a page over n results.
func (fo *FindOptions) Window(n int) (int, int) {
	start := fo.Offset
	if start > n {
		start = n
	}
	end := n
	if fo.Limit > 0 && start+fo.Limit < end {
		end = start + fo.Limit
	}
	return start, end
}
