package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoApplicantScenario(t *testing.T) {
	for seed := uint64(0); seed != 32; seed++ {
		var apps = mustApplicants(t,
			app("A", "01", "X", "R1", "R2", "R3"),
			app("B", "02", "X", "R1", "R3", "R2"),
		)
		var seats = mustSeats(t,
			seat("X", "R1", "1", "open"),
			seat("X", "R2", "1", "open"),
		)
		var alloc = &Allocator{Rand: NewRand(seed)}

		var result, err = alloc.Run(apps, seats, []Phase{
			{Name: "all", Type: PhasePreference},
		})
		require.NoError(t, err)
		require.Len(t, result.Assignments, 2)
		require.Empty(t, result.Unassigned)
		require.Empty(t, result.Unfilled)

		var rooms = map[string]string{}
		for _, a := range result.Assignments {
			rooms[a.Seat.Room] = a.Applicant.Key.Name
		}
		require.Len(t, rooms, 2)

		// The rank-1 winner of R1 has rank 1. The loser reaches R2 at rank 2 (A)
		// or at rank 3 (B).
		for _, a := range result.Assignments {
			switch {
			case a.Seat.Room == "R1":
				assert.Equal(t, 1, a.Rank)
				assert.True(t, a.FirstChoice())
			case a.Applicant.Key.Name == "A":
				assert.Equal(t, 2, a.Rank)
			default:
				assert.Equal(t, 3, a.Rank)
			}
		}
	}
}

func TestAssignmentsAreBijectiveAndConserved(t *testing.T) {
	for seed := uint64(0); seed != 16; seed++ {
		var appList, seatList = fixture(60, 50)
		var apps = mustApplicants(t, appList...)
		var seats = mustSeats(t, seatList...)

		var alloc = &Allocator{
			Policy: Policy{SeatTypes: map[string]string{"g1": "g2"}, RestrictedRooms: []string{"quiet"}},
			Rand:   NewRand(seed),
		}
		var result, err = alloc.Run(apps, seats, testPhases())
		require.NoError(t, err)

		var byApp = map[ApplicantKey]bool{}
		var bySeat = map[SeatID]bool{}

		for _, a := range result.Assignments {
			require.False(t, byApp[a.Applicant.Key], "applicant %s assigned twice", a.Applicant.Key)
			require.False(t, bySeat[a.Seat.ID()], "seat %s assigned twice", a.Seat.ID())
			require.True(t, a.Seat.IsOpen())
			byApp[a.Applicant.Key] = true
			bySeat[a.Seat.ID()] = true
		}
		// Conservation: assigned + unassigned == input, per side.
		require.Equal(t, 60, len(result.Assignments)+len(result.Unassigned))
		require.Equal(t, 50-len(seats.Closed()), len(result.Assignments)+len(result.Unfilled))

		// The trailing unmatched phase leaves nobody behind while seats remain.
		if len(result.Unfilled) != 0 {
			require.Empty(t, result.Unassigned)
		}
		// Per-phase accounting chains.
		for i, r := range result.Phases {
			require.Equal(t, r.Entering-r.Assigned, r.Remaining)
			if i != 0 {
				require.Equal(t, result.Phases[i-1].Remaining, r.Entering)
			}
		}
	}
}

func TestFixedSeedIsDeterministic(t *testing.T) {
	var run = func(seed uint64) []Placement {
		var appList, seatList = fixture(40, 45)
		var result, err = (&Allocator{Rand: NewRand(seed)}).Run(
			mustApplicants(t, appList...), mustSeats(t, seatList...), testPhases())
		require.NoError(t, err)
		return result.Assignments.Placements()
	}
	require.Equal(t, run(1234), run(1234))
	require.NotEqual(t, run(1234), run(4321))

	var a, b = AmbientSeed(), AmbientSeed()
	require.NotEqual(t, run(a), run(b))
}

func TestPreferenceRankAndSeatTypePriority(t *testing.T) {
	var apps = mustApplicants(t, app("A", "01", "g1", "R1", "R2", "R3"))
	var seats = mustSeats(t,
		seat("g1", "R2", "1", "open"),
		seat("g2", "R1", "1", "open"),
		seat("g1", "R1", "2", "open"),
		seat("g3", "R1", "3", "open"),
	)
	var out = MatchPreferences(NewRand(7), apps, seats,
		Phase{Type: PhasePreference}, Policy{SeatTypes: map[string]string{"g1": "g2"}})

	// First choice wins over later ranks, and the mapped seat type wins within the room.
	require.Len(t, out, 1)
	require.Equal(t, SeatID{"R1", "1"}, out[0].Seat.ID())
	require.Equal(t, 1, out[0].Rank)
	require.Equal(t, 0, apps.Len())
	require.Equal(t, 3, seats.Len())
}

func TestPreferenceFallsBackToOtherSeatType(t *testing.T) {
	for seed := uint64(0); seed != 16; seed++ {
		var apps = mustApplicants(t, app("A", "01", "g1", "R1", "R2", "R3"))
		var seats = mustSeats(t,
			seat("g9", "R1", "1", "open"),
			seat("g2", "R1", "2", "closed"),
			seat("g2", "R2", "1", "open"),
		)
		var out = MatchPreferences(NewRand(seed), apps, seats,
			Phase{Type: PhasePreference}, Policy{SeatTypes: map[string]string{"g1": "g2"}})

		// R1 has no open seat of the preferred type. Its seat of another type
		// is drawn, rather than the preferred type at a later rank.
		require.Len(t, out, 1)
		require.Equal(t, SeatID{"R1", "1"}, out[0].Seat.ID())
		require.Equal(t, 1, out[0].Rank)
		require.True(t, seats.Contains(SeatID{"R2", "1"}))
	}
}

func TestPreferenceRankPriorityUnderContention(t *testing.T) {
	for seed := uint64(0); seed != 64; seed++ {
		var appList, seatList = fixture(80, 40)
		var apps = mustApplicants(t, appList...)
		var seats = mustSeats(t, seatList...)

		var out = MatchPreferences(NewRand(seed), apps, seats,
			Phase{Type: PhasePreference}, Policy{SeatTypes: map[string]string{"g1": "g2"}})
		require.NotEmpty(t, out)
		require.NotZero(t, apps.Len())

		var open = make(map[string]int)
		for _, s := range seats.Remaining() {
			open[s.Room]++
		}
		// An Applicant placed at rank r found no open Seat in its rooms of
		// rank < r, and Seats are never returned to the pool.
		for _, a := range out {
			for rank := 1; rank < a.Rank; rank++ {
				require.Zero(t, open[a.Applicant.Prefers(rank)],
					"%s placed at rank %d", a.Applicant.Key, a.Rank)
			}
		}
		// Applicants left over found no open Seat in any of their rooms.
		for _, a := range apps.Remaining() {
			for rank := 1; rank <= NumPreferences; rank++ {
				require.Zero(t, open[a.Prefers(rank)], "%s left over", a.Key)
			}
		}
	}
}

func TestPreferencePhaseFilters(t *testing.T) {
	var apps = mustApplicants(t,
		app("A", "01", "senior", "R1", "R2", "R3"),
		app("B", "02", "junior", "R1", "R2", "R3"),
	)
	var seats = mustSeats(t,
		seat("junior", "R1", "1", "open"),
		seat("senior", "R3", "1", "open"),
	)
	var out = MatchPreferences(NewRand(1), apps, seats, Phase{
		Type:      PhasePreference,
		Classes:   []string{"senior"},
		SeatTypes: []string{"senior"},
	}, Policy{})

	// Only the senior cohort is matched, and only to senior seats.
	require.Len(t, out, 1)
	require.Equal(t, "A", out[0].Applicant.Key.Name)
	require.Equal(t, SeatID{"R3", "1"}, out[0].Seat.ID())
	require.Equal(t, 3, out[0].Rank)
	require.False(t, out[0].FirstChoice())

	require.True(t, apps.Contains(ApplicantKey{"B", "02"}))
	require.True(t, seats.Contains(SeatID{"R1", "1"}))
}

func TestRemainderTierOrdering(t *testing.T) {
	var policy = Policy{
		SeatTypes:       map[string]string{"g1": "g2"},
		RestrictedRooms: []string{"quiet"},
	}
	var names = func(tiers []Tier) (out []string) {
		for _, t := range tiers {
			out = append(out, t.Name)
		}
		return
	}
	require.Equal(t, []string{
		"allowed-type-matched",
		"allowed-type-other",
		"restricted-type-matched",
		"restricted-type-other",
	}, names(policy.RemainderTiers(app("A", "01", "g1", "R1", "R2", "R3"))))

	require.Equal(t, []string{"type-matched", "type-other"},
		names(policy.RemainderTiers(app("B", "02", "g1", "R1", "quiet", "R3"))))

	var tiers = policy.RemainderTiers(app("A", "01", "g1", "R1", "R2", "R3"))
	assert.True(t, tiers[0].Admit(seat("g2", "R9", "1", "open")))
	assert.False(t, tiers[0].Admit(seat("g1", "R9", "1", "open")))
	assert.True(t, tiers[1].Admit(seat("g1", "R9", "1", "open")))
	assert.True(t, tiers[2].Admit(seat("g2", "quiet", "1", "open")))
	assert.True(t, tiers[3].Admit(seat("g1", "quiet", "1", "open")))
}

func TestRemainderPrefersUnrestrictedRooms(t *testing.T) {
	var policy = Policy{RestrictedRooms: []string{"quiet"}}

	for seed := uint64(0); seed != 16; seed++ {
		var apps = mustApplicants(t,
			app("A", "01", "g1", "R1", "R2", "R3"),    // Did not request "quiet".
			app("B", "02", "g1", "quiet", "R2", "R3"), // Did.
		)
		var seats = mustSeats(t,
			seat("g1", "quiet", "1", "open"),
			seat("g2", "open-plan", "1", "open"),
		)
		var out = AllocateRemainder(NewRand(seed), apps, seats, policy)
		require.Len(t, out, 2)

		// Regardless of draw order, A avoids the restricted room, while B
		// ignores restriction in favor of its seat type.
		for _, a := range out {
			require.Equal(t, 0, a.Rank)
			if a.Applicant.Key.Name == "A" {
				require.Equal(t, "open-plan", a.Seat.Room)
			} else {
				require.Equal(t, "quiet", a.Seat.Room)
			}
		}
	}
}

func TestRemainderWithExhaustedSeats(t *testing.T) {
	var apps = mustApplicants(t,
		app("A", "01", "g1", "R1", "R2", "R3"),
		app("B", "02", "g1", "R1", "R2", "R3"),
		app("C", "03", "g1", "R1", "R2", "R3"),
	)
	var seats = mustSeats(t, seat("g9", "R9", "1", "open"))

	var out = AllocateRemainder(NewRand(3), apps, seats, Policy{})
	require.Len(t, out, 1)
	require.Equal(t, 2, apps.Len())
	require.Equal(t, 0, seats.Len())
}

func TestRunRejectsUnknownPhaseBeforeAssigning(t *testing.T) {
	var apps = mustApplicants(t, app("A", "01", "g1", "R1", "R2", "R3"))
	var seats = mustSeats(t, seat("g1", "R1", "1", "open"))

	var _, err = (&Allocator{Rand: NewRand(1)}).Run(apps, seats, []Phase{
		{Name: "first", Type: PhasePreference},
		{Name: "bogus", Type: "lottery"},
	})
	require.EqualError(t, err, `phases[1]: phase "bogus": unknown phase type "lottery"`)
	require.Equal(t, 1, apps.Len())
	require.Equal(t, 1, seats.Len())

	_, err = (&Allocator{Rand: NewRand(1)}).Run(apps, seats, []Phase{
		{Name: "rest", Type: PhaseUnmatched, Classes: []string{"g1"}},
	})
	require.EqualError(t, err, `phases[0]: phase "rest": unmatched phases cannot filter classes or seat types`)
}

func TestPoolsRejectDuplicates(t *testing.T) {
	var _, err = NewApplicantPool([]Applicant{
		app("A", "01", "g1", "R1", "R2", "R3"),
		app("A", "01", "g2", "R3", "R2", "R1"),
	})
	require.EqualError(t, err, "duplicate applicant A_01 (row 1)")

	_, err = NewSeatPool([]Seat{
		seat("g1", "R1", "1", "closed"),
		seat("g1", "R1", "1", "open"),
	})
	require.EqualError(t, err, "duplicate seat R1#1 (row 1)")

	seats, err := NewSeatPool([]Seat{
		seat("g1", "R1", "1", "open"),
		seat("g1", "R1", "2", "closed"),
		seat("g1", "R1", "3", "open"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, seats.Len())
	require.Equal(t, []Seat{seat("g1", "R1", "2", "closed")}, seats.Closed())

	require.True(t, seats.Remove(SeatID{"R1", "1"}))
	require.False(t, seats.Remove(SeatID{"R1", "1"}))
	require.False(t, seats.Remove(SeatID{"R1", "2"}))
	require.Equal(t, []Seat{seat("g1", "R1", "3", "open")}, seats.Remaining())
}

func TestApplicantPoolOrderAndSelection(t *testing.T) {
	var apps = mustApplicants(t,
		app("C", "03", "g2", "R1", "R2", "R3"),
		app("A", "01", "g1", "R1", "R2", "R3"),
		app("B", "02", "g2", "R1", "R2", "R3"),
	)
	require.True(t, apps.Remove(ApplicantKey{"C", "03"}))

	var got, ok = apps.Get(ApplicantKey{"B", "02"})
	require.True(t, ok)
	require.Equal(t, "g2", got.Class)
	_, ok = apps.Get(ApplicantKey{"C", "03"})
	require.False(t, ok)

	require.Equal(t, []string{"A", "B"}, appNames(apps.Remaining()))
	require.Equal(t, []string{"B"}, appNames(apps.Select([]string{"g2"})))
}

func appNames(apps []Applicant) (out []string) {
	for _, a := range apps {
		out = append(out, a.Key.Name)
	}
	return
}

func app(name, id, class, p1, p2, p3 string) Applicant {
	return Applicant{
		Key:         ApplicantKey{Name: name, ID: id},
		Class:       class,
		Preferences: [NumPreferences]string{p1, p2, p3},
	}
}

func seat(typ, room, number, status string) Seat {
	return Seat{Type: typ, Room: room, Number: number, Status: status}
}

func mustApplicants(t *testing.T, apps ...Applicant) *ApplicantPool {
	var p, err = NewApplicantPool(apps)
	require.NoError(t, err)
	return p
}

func mustSeats(t *testing.T, seats ...Seat) *SeatPool {
	var p, err = NewSeatPool(seats)
	require.NoError(t, err)
	return p
}

func testPhases() []Phase {
	return []Phase{
		{Name: "seniors", Type: PhasePreference, Classes: []string{"g3"}, SeatTypes: []string{"g3"}},
		{Name: "everyone", Type: PhasePreference},
		{Name: "remainder", Type: PhaseUnmatched},
	}
}

// fixture builds |numApps| Applicants and |numSeats| Seats over a small
// vocabulary of rooms and classes. Every seventh Seat is closed.
func fixture(numApps, numSeats int) ([]Applicant, []Seat) {
	var rooms = []string{"R1", "R2", "R3", "quiet"}
	var classes = []string{"g1", "g2", "g3"}

	var apps []Applicant
	for i := 0; i != numApps; i++ {
		apps = append(apps, app(
			fmt.Sprintf("name%d", i),
			fmt.Sprintf("2024%04d", i),
			classes[i%len(classes)],
			rooms[i%len(rooms)],
			rooms[(i+1)%len(rooms)],
			rooms[(i+3)%len(rooms)],
		))
	}
	var seats []Seat
	for i := 0; i != numSeats; i++ {
		var status = "open"
		if i%7 == 6 {
			status = "closed"
		}
		seats = append(seats, seat(classes[i%2+1], rooms[i%len(rooms)], fmt.Sprint(i), status))
	}
	return apps, seats
}
