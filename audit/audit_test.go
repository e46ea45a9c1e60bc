package audit

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/config"
	"go.seatdraw.dev/core/records"
)

func TestHashFile(t *testing.T) {
	var fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "empty", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "abc", []byte("abc"), 0644))

	var sum, size, err = HashFile(fs, "empty")
	require.NoError(t, err)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)
	require.Equal(t, int64(0), size)

	sum, err = LogFileHash(fs, "input", "abc")
	require.NoError(t, err)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	require.Equal(t, sum, HashBytes([]byte("abc")))

	_, _, err = HashFile(fs, "missing")
	require.Error(t, err)
}

func TestCheckInput(t *testing.T) {
	var cfg = &config.Config{
		ValidRooms:   []string{"hall", "quiet", "annex"},
		ValidClasses: []string{"junior", "senior"},
	}
	var apps = []records.Application{
		application(2, "a@x", "Kim", "2024000101", "senior", "hall", "quiet", "annex"),
		application(3, "b@x", "Lee", "2024000202", "junior", "hall", "attic", "annex"),
		application(4, "a@x", "Kim", "2023999901", "alumni", "hall", "quiet", "annex"),
		application(5, "c@x", "Park", "2024000202", "junior", "hall", "quiet", "annex"),
	}
	var seats = []allocator.Seat{
		{Type: "senior", Room: "hall", Number: "1", Status: "open"},
		{Type: "senior", Room: "hall", Number: "2", Status: "closed"},
		{Type: "junior", Room: "quiet", Number: "1", Status: "open"},
	}
	var r = CheckInput(apps, seats, cfg)

	require.Equal(t, []Duplicate{{Value: "a@x", Lines: []int{2, 4}}}, r.DuplicateEmails)
	require.Equal(t, []Duplicate{{Value: "2024000202", Lines: []int{3, 5}}}, r.DuplicateIDs)
	require.Equal(t, []Duplicate{{Value: "Kim_01", Lines: []int{2, 4}}}, r.DuplicatePseudonyms)
	require.Equal(t, []Invalid{
		{Line: 3, Name: "Lee", Field: "pref2", Value: "attic"},
		{Line: 4, Name: "Kim", Field: "class", Value: "alumni"},
	}, r.Invalid)
	require.EqualError(t, r.Err(), "applications have 2 invalid values")

	require.Equal(t, 2, r.OpenSeats)
	require.Equal(t, 2, r.Shortfall())
	r.Log()

	r = CheckInput(apps[:1], seats, cfg)
	require.NoError(t, r.Err())
	require.Equal(t, 0, r.Shortfall())
	require.Empty(t, r.DuplicateIDs)
}

func TestCompareRoster(t *testing.T) {
	var roster = []records.Roster{
		{ID: "2024-01", Name: "Kim", Status: "enrolled", ClassCode: "0"},
		{ID: "2024-02", Name: "Lee", Status: "leave", ClassCode: "1"},
		{ID: "2024-03", Name: "Choi", Status: "enrolled", ClassCode: "1"},
		{ID: "2024-09", Name: "Jung", Status: "enrolled", ClassCode: "2"},
	}
	var apps = []records.Application{
		application(2, "", "Kim", "2024-01", "freshman", "a", "b", "c"),
		application(3, "", "Lee", "2024-02", "sophomore", "a", "b", "c"),
		application(4, "", "Chae", "2024-03", "freshman", "a", "b", "c"),
		application(5, "", "Kim", "2024-07", "alumni", "a", "b", "c"),
	}
	var codes = map[string]string{"0": "freshman", "1": "sophomore", "2": "senior"}

	var r = CompareRoster(roster, apps, codes, "leave")
	require.Equal(t, 3, r.Matched)
	require.Equal(t, []NameMismatch{{ID: "2024-03", RosterName: "Choi", AppliedName: "Chae"}}, r.NameMismatches)
	require.Equal(t, []records.Roster{roster[1]}, r.OnLeave)
	require.Equal(t, []ClassMismatch{{ID: "2024-03", Name: "Chae", Code: "1", Expected: "sophomore", AppliedAs: "freshman"}}, r.ClassMismatches)
	require.Equal(t, []records.Application{apps[3]}, r.InvalidClasses)
	require.Equal(t, map[string][]string{"Kim": {"2024-01", "2024-07"}}, r.DuplicateNames)
	require.Equal(t, []records.Roster{roster[3]}, r.OnlyRoster)
	require.Equal(t, []records.Application{apps[3]}, r.OnlyApplications)
}

func application(line int, email, name, id, class, p1, p2, p3 string) records.Application {
	return records.Application{
		Email: email,
		Applicant: allocator.Applicant{
			Key:         allocator.ApplicantKey{Name: name, ID: id},
			Class:       class,
			Preferences: [3]string{p1, p2, p3},
		},
		Line: line,
	}
}
