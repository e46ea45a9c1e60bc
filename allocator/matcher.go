package allocator

import (
	"math/rand/v2"
	"slices"
)

// MatchPreferences executes a PhasePreference |phase|, matching its cohort of
// remaining Applicants to Seats of their ranked Preferences. Ranks are
// processed in order. At each rank the cohort's still-unassigned members are
// uniformly shuffled, and each in turn draws a Seat of its rank room: Seats of
// the Applicant's preferred seat Type are drawn first, and other admitted
// Seats only if none remain. Matched Applicants and Seats are removed from
// their pools. Applicants who match at no rank remain in |applicants|.
func MatchPreferences(rng *rand.Rand, applicants *ApplicantPool, seats *SeatPool, phase Phase, policy Policy) Assignments {
	var out Assignments

	for rank := 1; rank <= NumPreferences; rank++ {
		var cohort = applicants.Select(phase.Classes)
		rng.Shuffle(len(cohort), func(i, j int) { cohort[i], cohort[j] = cohort[j], cohort[i] })

		for _, app := range cohort {
			var room = app.Prefers(rank)
			var preferred = policy.PreferredSeatType(app.Class)

			var matched, other []Seat
			for _, s := range seats.Filter(func(s Seat) bool { return s.Room == room }) {
				if len(phase.SeatTypes) != 0 && !slices.Contains(phase.SeatTypes, s.Type) {
					continue
				} else if s.Type == preferred {
					matched = append(matched, s)
				} else {
					other = append(other, s)
				}
			}

			var seat, ok = drawFirst(rng, matched, other)
			if !ok {
				continue
			}
			seats.Remove(seat.ID())
			applicants.Remove(app.Key)

			out = append(out, Assignment{Applicant: app, Seat: seat, Rank: rank})
		}
	}
	return out
}

// drawFirst draws uniformly from the first non-empty of |tiers|.
func drawFirst(rng *rand.Rand, tiers ...[]Seat) (Seat, bool) {
	for _, t := range tiers {
		if len(t) != 0 {
			return t[rng.IntN(len(t))], true
		}
	}
	return Seat{}, false
}
