package allocator

import (
	"math/rand/v2"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Allocator runs ordered Phases over an ApplicantPool and SeatPool.
type Allocator struct {
	Policy Policy
	// Rand is the sole source of randomness of the Allocator.
	Rand *rand.Rand
}

// Result of an Allocator run.
type Result struct {
	// Assignments of all Phases, in the order they were made.
	Assignments Assignments
	// Phases reports the progress of each executed Phase.
	Phases []PhaseReport
	// Applicants remaining unassigned after all Phases.
	Unassigned []Applicant
	// Open Seats remaining unfilled after all Phases.
	Unfilled []Seat
}

// PhaseReport summarizes an executed Phase.
type PhaseReport struct {
	// Index of the Phase within the configured Phases.
	Index int
	Name  string
	Type  PhaseType
	// Number of Applicants in the pool as the Phase began.
	Entering int
	// Number of Assignments made by the Phase.
	Assigned int
	// Number of Applicants remaining in the pool as the Phase completed.
	Remaining int
}

// Run executes |phases| in order against |applicants| and |seats|, which are
// drained as Assignments are made. All |phases| are validated before any is
// executed: on error, no Assignments are made and both pools are unmodified.
//
// Exhausting |seats| is not an error. Applicants and Seats left over are
// reported by the Result.
func (a *Allocator) Run(applicants *ApplicantPool, seats *SeatPool, phases []Phase) (*Result, error) {
	var indices = make([]int, len(phases))
	for i := range indices {
		indices[i] = i
	}
	return a.RunSelected(applicants, seats, phases, indices)
}

// RunSelected is Run over the sub-sequence of |phases| at |indices|, as chosen
// by SelectPhases. Assignments and PhaseReports carry the index of their Phase
// within |phases|, rather than within the sub-sequence.
func (a *Allocator) RunSelected(applicants *ApplicantPool, seats *SeatPool, phases []Phase, indices []int) (*Result, error) {
	var selected, err = SelectPhases(phases, indices)
	if err != nil {
		return nil, err
	}
	for i, p := range selected {
		if err := p.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "phases[%d]", indices[i])
		}
	}
	var result = new(Result)

	for i, phase := range selected {
		var report = PhaseReport{
			Index:    indices[i],
			Name:     phase.Name,
			Type:     phase.Type,
			Entering: applicants.Len(),
		}
		var made Assignments

		switch phase.Type {
		case PhasePreference:
			made = MatchPreferences(a.Rand, applicants, seats, phase, a.Policy)
		case PhaseUnmatched:
			made = AllocateRemainder(a.Rand, applicants, seats, a.Policy)
		}
		for j := range made {
			made[j].Phase = indices[i]
			allocatorAssignmentsTotal.WithLabelValues(string(phase.Type), strconv.Itoa(made[j].Rank)).Inc()
		}
		allocatorPhasesTotal.WithLabelValues(string(phase.Type)).Inc()

		report.Assigned = len(made)
		report.Remaining = applicants.Len()

		result.Assignments = append(result.Assignments, made...)
		result.Phases = append(result.Phases, report)

		log.WithFields(log.Fields{
			"phase":     phase.Name,
			"index":     report.Index,
			"type":      phase.Type,
			"entering":  report.Entering,
			"assigned":  report.Assigned,
			"remaining": report.Remaining,
			"seats":     seats.Len(),
		}).Debug("executed allocation phase")
	}

	result.Unassigned = applicants.Remaining()
	result.Unfilled = seats.Remaining()

	allocatorUnassignedApplicants.Set(float64(len(result.Unassigned)))
	allocatorUnfilledSeats.Set(float64(len(result.Unfilled)))

	return result, nil
}
