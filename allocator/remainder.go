package allocator

import (
	"math/rand/v2"
)

// Tier is a named predicate over Seats. The remainder allocator draws from the
// first Tier of an Applicant which admits any remaining Seat.
type Tier struct {
	Name  string
	Admit func(Seat) bool
}

// RemainderTiers returns the ordered candidate Tiers of Applicant |a|.
//
// Applicants who requested a restricted room are indifferent to restriction,
// and prefer only their preferred seat Type. Everyone else prefers
// unrestricted rooms over restricted ones, and then their preferred seat Type.
func (p Policy) RemainderTiers(a Applicant) []Tier {
	var preferred = p.PreferredSeatType(a.Class)
	var typed = func(s Seat) bool { return s.Type == preferred }

	if p.RequestedRestricted(a) {
		return []Tier{
			{Name: "type-matched", Admit: typed},
			{Name: "type-other", Admit: func(s Seat) bool { return !typed(s) }},
		}
	}
	return []Tier{
		{Name: "allowed-type-matched", Admit: func(s Seat) bool { return !p.IsRestricted(s.Room) && typed(s) }},
		{Name: "allowed-type-other", Admit: func(s Seat) bool { return !p.IsRestricted(s.Room) && !typed(s) }},
		{Name: "restricted-type-matched", Admit: func(s Seat) bool { return p.IsRestricted(s.Room) && typed(s) }},
		{Name: "restricted-type-other", Admit: func(s Seat) bool { return p.IsRestricted(s.Room) && !typed(s) }},
	}
}

// AllocateRemainder places all remaining |applicants| into remaining |seats|.
// Applicants are shuffled once, and each in turn draws uniformly from its first
// non-empty RemainderTiers. Should no Tier admit a remaining Seat, the
// Applicant draws from all remaining Seats. Applicants remain unassigned only
// once |seats| is exhausted. Assignments have a Rank of zero.
func AllocateRemainder(rng *rand.Rand, applicants *ApplicantPool, seats *SeatPool, policy Policy) Assignments {
	var out Assignments
	var order = applicants.Remaining()
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, app := range order {
		if seats.Len() == 0 {
			break
		}
		var remaining = seats.Remaining()
		var tiers = policy.RemainderTiers(app)

		var candidates = make([][]Seat, 0, len(tiers)+1)
		for _, t := range tiers {
			var admitted []Seat
			for _, s := range remaining {
				if t.Admit(s) {
					admitted = append(admitted, s)
				}
			}
			candidates = append(candidates, admitted)
		}
		candidates = append(candidates, remaining)

		var seat, _ = drawFirst(rng, candidates...)
		seats.Remove(seat.ID())
		applicants.Remove(app.Key)

		out = append(out, Assignment{Applicant: app, Seat: seat})
	}
	return out
}
