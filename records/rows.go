package records

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/locker"
)

// Headers of written files.
var (
	ApplicationHeader = []string{"timestamp", "email", "name", "id", "class", "pref1", "pref2", "pref3"}
	SeatHeader        = []string{"seat_type", "room", "seat", "status"}
	PlacementHeader   = []string{"name", "id_suffix", "room", "seat", "first_choice"}
	UnassignedHeader  = []string{"key", "class", "pref1", "pref2", "pref3"}
	LockerHeader      = []string{"name", "id_suffix", "room", "seat", "locker_location", "locker_number", "first_choice"}
	RosterHeader      = []string{"id", "name", "status", "class_code"}
)

// Published encodings of Placement.FirstChoice.
const (
	FirstChoiceYes = "O"
	FirstChoiceNo  = "X"
)

// Application is a row of an application form export.
type Application struct {
	Timestamp string
	Email     string
	Applicant allocator.Applicant
	// Line of the row within its file. Zero if the row wasn't decoded.
	Line int
}

// MarshalCSV implements Marshaler.
func (a Application) MarshalCSV() ([]string, error) {
	var p = a.Applicant.Preferences
	return []string{a.Timestamp, a.Email, a.Applicant.Key.Name, a.Applicant.Key.ID,
		a.Applicant.Class, p[0], p[1], p[2]}, nil
}

// UnmarshalCSV implements Unmarshaler. Trailing form columns are ignored.
func (a *Application) UnmarshalCSV(f []string) error {
	if err := expectFields(f, len(ApplicationHeader)); err != nil {
		return err
	}
	*a = Application{
		Timestamp: trim(f[0]),
		Email:     trim(f[1]),
		Applicant: allocator.Applicant{
			Key:         allocator.ApplicantKey{Name: trim(f[2]), ID: trim(f[3])},
			Class:       trim(f[4]),
			Preferences: [allocator.NumPreferences]string{trim(f[5]), trim(f[6]), trim(f[7])},
		},
	}
	if a.Applicant.Key.Name == "" || a.Applicant.Key.ID == "" {
		return errors.New("expected applicant name and id")
	}
	return nil
}

func (a *Application) setLine(l int) { a.Line = l }

// Applicants maps Applications to their Applicants.
func Applicants(apps []Application) []allocator.Applicant {
	var out = make([]allocator.Applicant, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.Applicant)
	}
	return out
}

// Seat is a row of a seat list or unmatched seat file.
type Seat struct{ allocator.Seat }

// MarshalCSV implements Marshaler.
func (s Seat) MarshalCSV() ([]string, error) {
	return []string{s.Type, s.Room, s.Number, s.Status}, nil
}

// UnmarshalCSV implements Unmarshaler.
func (s *Seat) UnmarshalCSV(f []string) error {
	if err := expectFields(f, len(SeatHeader)); err != nil {
		return err
	}
	s.Seat = allocator.Seat{Type: trim(f[0]), Room: trim(f[1]), Number: trim(f[2]), Status: trim(f[3])}
	return nil
}

// WrapSeats maps allocator Seats to Seat rows.
func WrapSeats(seats []allocator.Seat) []Seat {
	var out = make([]Seat, 0, len(seats))
	for _, s := range seats {
		out = append(out, Seat{s})
	}
	return out
}

// UnwrapSeats maps Seat rows to allocator Seats.
func UnwrapSeats(rows []Seat) []allocator.Seat {
	var out = make([]allocator.Seat, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Seat)
	}
	return out
}

// Placement is a row of a published seat result.
type Placement struct{ allocator.Placement }

// MarshalCSV implements Marshaler.
func (p Placement) MarshalCSV() ([]string, error) {
	return []string{p.Name, p.IDSuffix, p.Room, p.Seat, encodeFirstChoice(p.FirstChoice)}, nil
}

// UnmarshalCSV implements Unmarshaler.
func (p *Placement) UnmarshalCSV(f []string) error {
	if err := expectFields(f, len(PlacementHeader)); err != nil {
		return err
	}
	var fc, err = decodeFirstChoice(f[4])
	if err != nil {
		return err
	}
	p.Placement = allocator.Placement{Name: trim(f[0]), IDSuffix: trim(f[1]), Room: trim(f[2]), Seat: trim(f[3]), FirstChoice: fc}
	return nil
}

// WrapPlacements maps allocator Placements to Placement rows.
func WrapPlacements(ps []allocator.Placement) []Placement {
	var out = make([]Placement, 0, len(ps))
	for _, p := range ps {
		out = append(out, Placement{p})
	}
	return out
}

// UnwrapPlacements maps Placement rows to allocator Placements.
func UnwrapPlacements(rows []Placement) []allocator.Placement {
	var out = make([]allocator.Placement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Placement)
	}
	return out
}

// Unassigned is a row of the unmatched applicant file. Unlike published
// results, it carries the full ApplicantKey.
type Unassigned struct{ allocator.Applicant }

// MarshalCSV implements Marshaler.
func (u Unassigned) MarshalCSV() ([]string, error) {
	var p = u.Preferences
	return []string{u.Key.String(), u.Class, p[0], p[1], p[2]}, nil
}

// UnmarshalCSV implements Unmarshaler.
func (u *Unassigned) UnmarshalCSV(f []string) error {
	if err := expectFields(f, len(UnassignedHeader)); err != nil {
		return err
	}
	var key = trim(f[0])
	var ind = strings.LastIndexByte(key, '_')
	if ind == -1 {
		return errors.Errorf("malformed applicant key %q", key)
	}
	u.Applicant = allocator.Applicant{
		Key:         allocator.ApplicantKey{Name: key[:ind], ID: key[ind+1:]},
		Class:       trim(f[1]),
		Preferences: [allocator.NumPreferences]string{trim(f[2]), trim(f[3]), trim(f[4])},
	}
	return nil
}

// WrapUnassigned maps allocator Applicants to Unassigned rows.
func WrapUnassigned(apps []allocator.Applicant) []Unassigned {
	var out = make([]Unassigned, 0, len(apps))
	for _, a := range apps {
		out = append(out, Unassigned{a})
	}
	return out
}

// Locker is a row of a published locker result.
type Locker struct{ locker.Assignment }

// MarshalCSV implements Marshaler.
func (l Locker) MarshalCSV() ([]string, error) {
	var p = l.Placement
	return []string{p.Name, p.IDSuffix, p.Room, p.Seat, l.Locker.Location,
		strconv.Itoa(l.Locker.Number), encodeFirstChoice(p.FirstChoice)}, nil
}

// UnmarshalCSV implements Unmarshaler.
func (l *Locker) UnmarshalCSV(f []string) error {
	if err := expectFields(f, len(LockerHeader)); err != nil {
		return err
	}
	var num, err = strconv.Atoi(trim(f[5]))
	if err != nil {
		return errors.WithMessage(err, "locker_number")
	}
	fc, err := decodeFirstChoice(f[6])
	if err != nil {
		return err
	}
	l.Assignment = locker.Assignment{
		Placement: allocator.Placement{Name: trim(f[0]), IDSuffix: trim(f[1]), Room: trim(f[2]), Seat: trim(f[3]), FirstChoice: fc},
		Locker:    locker.Locker{Location: trim(f[4]), Number: num},
	}
	return nil
}

// WrapLockers maps locker Assignments to Locker rows.
func WrapLockers(as []locker.Assignment) []Locker {
	var out = make([]Locker, 0, len(as))
	for _, a := range as {
		out = append(out, Locker{a})
	}
	return out
}

// IssuedLockers returns the issued Lockers of Locker rows.
func IssuedLockers(rows []Locker) []locker.Locker {
	var out = make([]locker.Locker, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Locker)
	}
	return out
}

// Roster is a row of the registry roster, against which applications are
// cross-checked.
type Roster struct {
	ID        string
	Name      string
	Status    string
	ClassCode string
}

// MarshalCSV implements Marshaler.
func (r Roster) MarshalCSV() ([]string, error) {
	return []string{r.ID, r.Name, r.Status, r.ClassCode}, nil
}

// UnmarshalCSV implements Unmarshaler.
func (r *Roster) UnmarshalCSV(f []string) error {
	if err := expectFields(f, len(RosterHeader)); err != nil {
		return err
	}
	*r = Roster{ID: trim(f[0]), Name: trim(f[1]), Status: trim(f[2]), ClassCode: trim(f[3])}
	return nil
}

func expectFields(f []string, n int) error {
	if len(f) < n {
		return errors.Errorf("expected at least %d fields (got %d)", n, len(f))
	}
	return nil
}

func encodeFirstChoice(b bool) string {
	if b {
		return FirstChoiceYes
	}
	return FirstChoiceNo
}

func decodeFirstChoice(s string) (bool, error) {
	switch trim(s) {
	case FirstChoiceYes:
		return true, nil
	case FirstChoiceNo:
		return false, nil
	default:
		return false, errors.Errorf("invalid first_choice %q (expected %s or %s)", s, FirstChoiceYes, FirstChoiceNo)
	}
}

var trim = strings.TrimSpace
