package allocator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnassignedJoinsOnPseudonym(t *testing.T) {
	var apps = []Applicant{
		app("Kim", "20240117", "g1", "R1", "R2", "R3"),
		app("Lee", "20240217", "g1", "R1", "R2", "R3"), // Shares a suffix, but not a name.
		app("Kim", "20230299", "g2", "R1", "R2", "R3"),
		app("Park", "7", "g2", "R1", "R2", "R3"),
	}
	var published = []Placement{
		{Name: "Kim", IDSuffix: "17", Room: "R1", Seat: "3", FirstChoice: true},
		{Name: "Park", IDSuffix: "7", Room: "R2", Seat: "1"},
	}
	require.Equal(t, []Applicant{apps[1], apps[2]}, Unassigned(apps, published))
	require.Equal(t, apps, Unassigned(apps, nil))
}

func TestCheckExpected(t *testing.T) {
	var three = 3
	require.NoError(t, CheckExpected(nil, 7))
	require.NoError(t, CheckExpected(&three, 3))

	var err = CheckExpected(&three, 2)
	require.EqualError(t, err, "expected 3 additional applicants, but found 2")

	var expErr *ExpectationError
	require.True(t, errors.As(err, &expErr))
	require.Equal(t, ExpectationError{Expected: 3, Actual: 2}, *expErr)
}

func TestSelectPhases(t *testing.T) {
	var phases = testPhases()

	var out, err = SelectPhases(phases, []int{2, 1})
	require.NoError(t, err)
	require.Equal(t, []Phase{phases[2], phases[1]}, out)

	_, err = SelectPhases(phases, []int{0, 3})
	require.EqualError(t, err, "phase index 3 out of range (have 3 phases)")
	_, err = SelectPhases(phases, []int{-1})
	require.EqualError(t, err, "phase index -1 out of range (have 3 phases)")
	_, err = SelectPhases(phases, []int{1, 1})
	require.EqualError(t, err, "phase index 1 is repeated")
}

func TestRunSelectedReportsConfiguredIndices(t *testing.T) {
	var phases = testPhases()
	var apps = mustApplicants(t,
		app("A", "01", "g1", "R1", "R2", "R3"),
		app("B", "02", "g1", "R1", "R2", "R3"),
	)
	var seats = mustSeats(t, seat("g1", "R1", "1", "open"), seat("g1", "R9", "1", "open"))

	var result, err = (&Allocator{Rand: NewRand(5)}).RunSelected(apps, seats, phases, []int{1, 2})
	require.NoError(t, err)

	require.Len(t, result.Phases, 2)
	require.Equal(t, 1, result.Phases[0].Index)
	require.Equal(t, "everyone", result.Phases[0].Name)
	require.Equal(t, 2, result.Phases[1].Index)
	require.Equal(t, "remainder", result.Phases[1].Name)

	// One applicant wins R1 by preference, and the other is placed by remainder.
	require.Len(t, result.Assignments, 2)
	require.Equal(t, 1, result.Assignments[0].Phase)
	require.Equal(t, SeatID{"R1", "1"}, result.Assignments[0].Seat.ID())
	require.Equal(t, 2, result.Assignments[1].Phase)
	require.Equal(t, SeatID{"R9", "1"}, result.Assignments[1].Seat.ID())

	_, err = (&Allocator{Rand: NewRand(5)}).RunSelected(apps, seats, phases, []int{3})
	require.EqualError(t, err, "phase index 3 out of range (have 3 phases)")

	phases[2].Classes = []string{"g1"}
	_, err = (&Allocator{Rand: NewRand(5)}).RunSelected(apps, seats, phases, []int{1, 2})
	require.EqualError(t, err, `phases[2]: phase "remainder": unmatched phases cannot filter classes or seat types`)
}

func TestApplicantKeyForms(t *testing.T) {
	var k = ApplicantKey{Name: "홍길동", ID: "2024123456"}
	require.Equal(t, "홍길동_2024123456", k.String())
	require.Equal(t, "56", k.IDSuffix())
	require.Equal(t, "홍길동_56", k.Pseudonym())
	require.Equal(t, "x", ApplicantKey{ID: "x"}.IDSuffix())
}
