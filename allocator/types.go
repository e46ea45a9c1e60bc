package allocator

import "slices"

// NumPreferences is the number of ranked room preferences of every Applicant.
const NumPreferences = 3

// SeatStatusOpen is the Seat Status of seats which participate in allocation.
// Seats of any other Status are passed through unassigned.
const SeatStatusOpen = "open"

// ApplicantKey uniquely identifies an Applicant.
type ApplicantKey struct {
	Name string
	ID   string
}

// String returns the "Name_ID" form of the ApplicantKey.
func (k ApplicantKey) String() string { return k.Name + "_" + k.ID }

// IDSuffix returns the trailing two runes of the ID, which is all of the ID
// that's published in result files.
func (k ApplicantKey) IDSuffix() string {
	var r = []rune(k.ID)
	if len(r) <= 2 {
		return k.ID
	}
	return string(r[len(r)-2:])
}

// Pseudonym returns the "Name_IDSuffix" form of the ApplicantKey. Published
// results identify Applicants only by Pseudonym, and incremental runs join
// against prior results on it.
func (k ApplicantKey) Pseudonym() string { return Pseudonym(k.Name, k.IDSuffix()) }

// Pseudonym composes a pseudonymous identity from a name and ID suffix.
func Pseudonym(name, idSuffix string) string { return name + "_" + idSuffix }

// Applicant requests a Seat in one of three ranked rooms.
type Applicant struct {
	Key ApplicantKey
	// Priority class (eg, grade or status) of the Applicant.
	Class string
	// Ranked room Preferences. Preferences[0] is the first choice.
	Preferences [NumPreferences]string
}

// Prefers returns the room of the 1-indexed preference |rank|.
func (a Applicant) Prefers(rank int) string { return a.Preferences[rank-1] }

// Requested returns true if |room| is any of the Applicant's Preferences.
func (a Applicant) Requested(room string) bool {
	return slices.Contains(a.Preferences[:], room)
}

// SeatID uniquely identifies a Seat.
type SeatID struct {
	Room   string
	Number string
}

func (id SeatID) String() string { return id.Room + "#" + id.Number }

// Seat is a physical seat of a room.
type Seat struct {
	// Type is the capacity category overlaid on the seat, such as
	// a reservation for a priority Class.
	Type   string
	Room   string
	Number string
	// Status of the Seat. Only SeatStatusOpen Seats are assigned.
	Status string
}

// ID returns the SeatID of the Seat.
func (s Seat) ID() SeatID { return SeatID{Room: s.Room, Number: s.Number} }

// IsOpen returns true if the Seat participates in allocation.
func (s Seat) IsOpen() bool { return s.Status == SeatStatusOpen }

// Assignment of an Applicant to a Seat.
type Assignment struct {
	Applicant Applicant
	Seat      Seat
	// Rank is the 1-indexed preference rank which produced the Assignment,
	// or zero if the Assignment was made by the remainder allocator.
	Rank int
	// Index of the Phase which made the Assignment.
	Phase int
}

// FirstChoice returns true if the Assignment matched the Applicant's first
// preference.
func (a Assignment) FirstChoice() bool { return a.Rank == 1 }

// Placement returns the published, pseudonymous form of the Assignment.
func (a Assignment) Placement() Placement {
	return Placement{
		Name:        a.Applicant.Key.Name,
		IDSuffix:    a.Applicant.Key.IDSuffix(),
		Room:        a.Seat.Room,
		Seat:        a.Seat.Number,
		FirstChoice: a.FirstChoice(),
	}
}

// Assignments is an ordered list of Assignment, in the order they were made.
type Assignments []Assignment

// Placements maps Assignments to their published Placements.
func (as Assignments) Placements() []Placement {
	var out = make([]Placement, 0, len(as))
	for _, a := range as {
		out = append(out, a.Placement())
	}
	return out
}

// Placement is a published seat assignment, as it appears in result files.
type Placement struct {
	Name        string
	IDSuffix    string
	Room        string
	Seat        string
	FirstChoice bool
}

// Pseudonym of the placed Applicant.
func (p Placement) Pseudonym() string { return Pseudonym(p.Name, p.IDSuffix) }

// Policy is static configuration which shapes seat selection.
type Policy struct {
	// SeatTypes maps an Applicant Class to the seat Type it should
	// preferentially be matched into. Classes absent from the map prefer
	// a seat Type of the same name.
	SeatTypes map[string]string
	// RestrictedRooms are amenity-restricted rooms. Applicants who did not
	// request a restricted room are placed into one by the remainder
	// allocator only after all other Seats are exhausted.
	RestrictedRooms []string
}

// PreferredSeatType returns the seat Type preferred by |class|.
func (p Policy) PreferredSeatType(class string) string {
	if t, ok := p.SeatTypes[class]; ok {
		return t
	}
	return class
}

// IsRestricted returns true if |room| is an amenity-restricted room.
func (p Policy) IsRestricted(room string) bool {
	return slices.Contains(p.RestrictedRooms, room)
}

// RequestedRestricted returns true if the Applicant named an
// amenity-restricted room among their Preferences.
func (p Policy) RequestedRestricted(a Applicant) bool {
	for _, room := range a.Preferences {
		if p.IsRestricted(room) {
			return true
		}
	}
	return false
}
