package allocator

import (
	"fmt"
)

// Unassigned returns the |applicants| whose Pseudonym is not among
// |published| Placements, preserving the order of |applicants|.
func Unassigned(applicants []Applicant, published []Placement) []Applicant {
	var placed = make(map[string]struct{}, len(published))
	for _, p := range published {
		placed[p.Pseudonym()] = struct{}{}
	}

	var out []Applicant
	for _, a := range applicants {
		if _, ok := placed[a.Key.Pseudonym()]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// ExpectationError is returned when an incremental run finds a number of
// unassigned Applicants other than the number the operator expected.
type ExpectationError struct {
	Expected int
	Actual   int
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("expected %d additional applicants, but found %d", e.Expected, e.Actual)
}

// CheckExpected returns an *ExpectationError if |expected| is non-nil and
// differs from |actual|.
func CheckExpected(expected *int, actual int) error {
	if expected != nil && *expected != actual {
		return &ExpectationError{Expected: *expected, Actual: actual}
	}
	return nil
}
