package records

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/locker"
)

func TestDecodeApplications(t *testing.T) {
	var input = "\xef\xbb\xbf" + `Timestamp,Email,Name,ID,Class,1st,2nd,3rd,Comments
2025/02/01 10:00,kim@example.com,Kim,2024123401,senior,hall,quiet,annex,hello
,,,,,,,,

2025/02/01 10:05,lee@example.com, Lee ,2023000217,junior,quiet,hall,annex
`
	var apps, err = Decode[Application](strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Application{
		{
			Timestamp: "2025/02/01 10:00",
			Email:     "kim@example.com",
			Applicant: allocator.Applicant{
				Key:         allocator.ApplicantKey{Name: "Kim", ID: "2024123401"},
				Class:       "senior",
				Preferences: [3]string{"hall", "quiet", "annex"},
			},
			Line: 2,
		},
		{
			Timestamp: "2025/02/01 10:05",
			Email:     "lee@example.com",
			Applicant: allocator.Applicant{
				Key:         allocator.ApplicantKey{Name: "Lee", ID: "2023000217"},
				Class:       "junior",
				Preferences: [3]string{"quiet", "hall", "annex"},
			},
			Line: 5,
		},
	}, apps)
	require.Equal(t, "Lee_17", Applicants(apps)[1].Key.Pseudonym())

	_, err = Decode[Application](strings.NewReader("header\na,b,c\n"))
	require.EqualError(t, err, "line 2: expected at least 8 fields (got 3)")

	_, err = Decode[Application](strings.NewReader("header\nts,email,,id,c,r1,r2,r3\n"))
	require.EqualError(t, err, "line 2: expected applicant name and id")
}

func TestWriteTruncateAndAppend(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var path = "output/seat_result.csv"

	var first = []allocator.Placement{{Name: "Kim", IDSuffix: "01", Room: "hall", Seat: "3", FirstChoice: true}}
	var second = []allocator.Placement{{Name: "Lee", IDSuffix: "17", Room: "quiet", Seat: "1"}}

	// Appending to a missing file writes a header.
	require.NoError(t, Write(fs, path, PlacementHeader, WrapPlacements(first), Append))
	require.NoError(t, Write(fs, path, PlacementHeader, WrapPlacements(second), Append))

	var b, err = afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.Equal(t, "name,id_suffix,room,seat,first_choice\nKim,01,hall,3,O\nLee,17,quiet,1,X\n", string(b))

	rows, err := Read[Placement](fs, path)
	require.NoError(t, err)
	require.Equal(t, append(first, second...), UnwrapPlacements(rows))

	require.NoError(t, Write(fs, path, PlacementHeader, WrapPlacements(second), Truncate))
	b, _ = afero.ReadFile(fs, path)
	require.Equal(t, "name,id_suffix,room,seat,first_choice\nLee,17,quiet,1,X\n", string(b))

	_, err = Read[Placement](fs, "output/missing.csv")
	require.Error(t, err)
}

func TestSeatAndUnassignedRows(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var seats = []allocator.Seat{
		{Type: "senior", Room: "hall", Number: "1", Status: "open"},
		{Type: "junior", Room: "quiet", Number: "2", Status: "closed"},
	}
	require.NoError(t, Write(fs, "seats.csv", SeatHeader, WrapSeats(seats), Truncate))

	var rows, err = Read[Seat](fs, "seats.csv")
	require.NoError(t, err)
	require.Equal(t, seats, UnwrapSeats(rows))

	var apps = []allocator.Applicant{{
		Key:         allocator.ApplicantKey{Name: "Name_With_Underscores", ID: "2024"},
		Class:       "senior",
		Preferences: [3]string{"a", "b", "c"},
	}}
	require.NoError(t, Write(fs, "unassigned.csv", UnassignedHeader, WrapUnassigned(apps), Truncate))

	un, err := Read[Unassigned](fs, "unassigned.csv")
	require.NoError(t, err)
	require.Equal(t, apps[0], un[0].Applicant)

	_, err = Decode[Unassigned](strings.NewReader("h\nnokey,c,a,b,c\n"))
	require.EqualError(t, err, `line 2: malformed applicant key "nokey"`)
}

func TestLockerAndRosterRows(t *testing.T) {
	var as = []locker.Assignment{{
		Placement: allocator.Placement{Name: "Kim", IDSuffix: "01", Room: "hall", Seat: "3"},
		Locker:    locker.Locker{Location: "hall", Number: 17},
	}}
	var sb strings.Builder
	require.NoError(t, Encode(&sb, LockerHeader, WrapLockers(as)))
	require.Equal(t, "name,id_suffix,room,seat,locker_location,locker_number,first_choice\nKim,01,hall,3,hall,17,X\n", sb.String())

	var rows, err = Decode[Locker](strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Equal(t, []locker.Locker{{Location: "hall", Number: 17}}, IssuedLockers(rows))
	require.Equal(t, as[0], rows[0].Assignment)

	_, err = Decode[Locker](strings.NewReader("h\nKim,01,hall,3,hall,seventeen,X\n"))
	require.EqualError(t, err, `line 2: locker_number: strconv.Atoi: parsing "seventeen": invalid syntax`)
	_, err = Decode[Locker](strings.NewReader("h\nKim,01,hall,3,hall,17,maybe\n"))
	require.EqualError(t, err, `line 2: invalid first_choice "maybe" (expected O or X)`)

	roster, err := Decode[Roster](strings.NewReader("id,name,status,grade\n2024-01, Kim ,enrolled,0\n"))
	require.NoError(t, err)
	require.Equal(t, []Roster{{ID: "2024-01", Name: "Kim", Status: "enrolled", ClassCode: "0"}}, roster)
}

func TestWriteSheetTruncateAndAppend(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var lockers = func(names ...string) (out []locker.Assignment) {
		for i, n := range names {
			out = append(out, locker.Assignment{
				Placement: allocator.Placement{Name: n, IDSuffix: "01", Room: "hall", Seat: "1", FirstChoice: true},
				Locker:    locker.Locker{Location: "B1", Number: i + 1},
			})
		}
		return
	}
	var readSheet = func(path string) [][]string {
		var content, err = afero.ReadFile(fs, path)
		require.NoError(t, err)
		book, err := excelize.OpenReader(bytes.NewReader(content))
		require.NoError(t, err)
		defer book.Close()

		rows, err := book.GetRows(book.GetSheetName(0))
		require.NoError(t, err)
		return rows
	}

	// Appending to a missing workbook creates it, with a header.
	require.NoError(t, WriteSheet(fs, "/out/lockers.xlsx", LockerHeader, WrapLockers(lockers("Kim")), Append))
	require.NoError(t, WriteSheet(fs, "/out/lockers.xlsx", LockerHeader, WrapLockers(lockers("Lee", "Park")), Append))
	require.Equal(t, [][]string{
		LockerHeader,
		{"Kim", "01", "hall", "1", "B1", "1", "O"},
		{"Lee", "01", "hall", "1", "B1", "1", "O"},
		{"Park", "01", "hall", "1", "B1", "2", "O"},
	}, readSheet("/out/lockers.xlsx"))

	require.NoError(t, WriteSheet(fs, "/out/lockers.xlsx", LockerHeader, WrapLockers(lockers("Choi")), Truncate))
	require.Equal(t, [][]string{
		LockerHeader,
		{"Choi", "01", "hall", "1", "B1", "1", "O"},
	}, readSheet("/out/lockers.xlsx"))

	// A file which isn't a workbook cannot be appended to, and is left as-is.
	require.NoError(t, afero.WriteFile(fs, "/out/bad.xlsx", []byte("not a workbook"), 0644))
	require.Error(t, WriteSheet(fs, "/out/bad.xlsx", LockerHeader, WrapLockers(lockers("Kim")), Append))

	var content, err = afero.ReadFile(fs, "/out/bad.xlsx")
	require.NoError(t, err)
	require.Equal(t, "not a workbook", string(content))
}
