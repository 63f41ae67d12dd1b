// Package catalog tracks test cases and their last known results.
package catalog

import (
	"fmt"
	"iter"
	"strings"

	"vrt/internal/domain"
)

// NotFoundError means no registered test case matched a name pattern.
type NotFoundError struct {
	Pattern string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no test case matches %q", e.Pattern)
}

// Catalog is the append-only list of registered test cases. IDs are indices
// into the registration order and stay stable for the catalog's lifetime.
type Catalog struct {
	cases []*domain.TestCase
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Register appends a test case and returns its stable ID. The case starts
// out unknown and out of date.
func (c *Catalog) Register(tc domain.TestCase) domain.TestID {
	tc.ID = domain.TestID(len(c.cases))
	tc.Result = domain.ResultUnknown
	tc.ResultValid = false
	c.cases = append(c.cases, &tc)
	return tc.ID
}

// Get returns the test case with the given ID, or nil if the ID is out of
// range.
func (c *Catalog) Get(id domain.TestID) *domain.TestCase {
	if id < 0 || int(id) >= len(c.cases) {
		return nil
	}
	return c.cases[id]
}

// Len returns the number of registered test cases.
func (c *Catalog) Len() int { return len(c.cases) }

// All iterates the test cases in registration order.
func (c *Catalog) All() iter.Seq2[domain.TestID, *domain.TestCase] {
	return func(yield func(domain.TestID, *domain.TestCase) bool) {
		for i, tc := range c.cases {
			if !yield(domain.TestID(i), tc) {
				return
			}
		}
	}
}

// FindByName resolves a name pattern to a test case. Exact matches against
// "library.entity" or the bare entity name win, first in registration
// order; failing that, the first case whose qualified name contains the
// pattern is used.
func (c *Catalog) FindByName(pattern string) (domain.TestID, error) {
	for i, tc := range c.cases {
		if pattern == tc.Name() || pattern == tc.Entity {
			return domain.TestID(i), nil
		}
	}
	for i, tc := range c.cases {
		if strings.Contains(tc.Name(), pattern) {
			return domain.TestID(i), nil
		}
	}
	return domain.NoTest, &NotFoundError{Pattern: pattern}
}

// InvalidateAll marks every result out of date. Called after any
// recompilation, since a source change may affect any test.
func (c *Catalog) InvalidateAll() {
	for _, tc := range c.cases {
		tc.ResultValid = false
	}
}
