// Package allocator implements a randomized, multi-phase algorithm for
// assigning a population of Applicants to a pool of Seats. Each Applicant
// states three ranked room Preferences and belongs to a priority Class; each
// Seat carries a seat Type and belongs to a Room.
//
// An Allocator executes an ordered list of Phases against a shared
// ApplicantPool and SeatPool, which are drained as Assignments are made.
// "preference" Phases match a cohort of Classes to their ranked rooms, rank by
// rank, with a fresh uniform shuffle per rank. An "unmatched" Phase places all
// remaining Applicants into whatever Seats are left, using an ordered list of
// candidate tiers (see Policy.RemainderTiers).
//
// Fairness derives solely from the supplied *rand.Rand. Incremental runs seed
// it with SeedFromBytes over their input, such that byte-identical input
// reproduces byte-identical Assignments.
package allocator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocatorAssignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatdraw_allocator_assignments_total",
		Help: "Cumulative number of applicant / seat assignments, by phase type and preference rank.",
	}, []string{"phase_type", "rank"})
	allocatorPhasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatdraw_allocator_phases_total",
		Help: "Cumulative number of executed allocation phases, by phase type.",
	}, []string{"phase_type"})
	allocatorUnassignedApplicants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatdraw_allocator_unassigned_applicants",
		Help: "Number of applicants left unassigned by the most recent run.",
	})
	allocatorUnfilledSeats = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatdraw_allocator_unfilled_seats",
		Help: "Number of open seats left unfilled by the most recent run.",
	})
)
