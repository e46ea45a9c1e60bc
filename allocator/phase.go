package allocator

import (
	"github.com/pkg/errors"
)

// PhaseType determines the assignment procedure of a Phase.
type PhaseType string

const (
	// PhasePreference matches a cohort of Applicants to Seats of their
	// ranked room Preferences.
	PhasePreference PhaseType = "preference"
	// PhaseUnmatched places all remaining Applicants into any remaining
	// Seats, using the remainder tiers of the Policy.
	PhaseUnmatched PhaseType = "unmatched"
)

// Validate returns an error if the PhaseType is not known.
func (t PhaseType) Validate() error {
	switch t {
	case PhasePreference, PhaseUnmatched:
		return nil
	default:
		return errors.Errorf("unknown phase type %q", string(t))
	}
}

// Phase is a step of an allocation run.
type Phase struct {
	// Human-readable Name of the Phase, used in logs and reports.
	Name string `yaml:"name"`
	Type PhaseType `yaml:"type"`
	// Classes of Applicants matched by a PhasePreference Phase.
	// If empty, all remaining Applicants are matched.
	Classes []string `yaml:"classes,omitempty"`
	// SeatTypes which a PhasePreference Phase may assign.
	// If empty, Seats of any Type may be assigned.
	SeatTypes []string `yaml:"seat_types,omitempty"`
}

// Validate returns an error if the Phase is not well-formed.
func (p Phase) Validate() error {
	if err := p.Type.Validate(); err != nil {
		return errors.WithMessagef(err, "phase %q", p.Name)
	}
	if p.Type == PhaseUnmatched && (len(p.Classes) != 0 || len(p.SeatTypes) != 0) {
		return errors.Errorf("phase %q: unmatched phases cannot filter classes or seat types", p.Name)
	}
	return nil
}

// SelectPhases returns the sub-sequence of |phases| at |indices|, in the order
// of |indices|. It's an error for an index to be out of range, or repeated.
func SelectPhases(phases []Phase, indices []int) ([]Phase, error) {
	var out = make([]Phase, 0, len(indices))
	var seen = make(map[int]bool, len(indices))

	for _, ind := range indices {
		if ind < 0 || ind >= len(phases) {
			return nil, errors.Errorf("phase index %d out of range (have %d phases)", ind, len(phases))
		} else if seen[ind] {
			return nil, errors.Errorf("phase index %d is repeated", ind)
		}
		seen[ind] = true
		out = append(out, phases[ind])
	}
	return out, nil
}
