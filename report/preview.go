package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/config"
)

// OverflowMarker labels locker ranges used once a room's preceding ranges
// are exhausted.
const OverflowMarker = "└ overflow →"

// SeatTally counts seats of a Status by room and seat type.
type SeatTally struct {
	Status string
	// Rooms in order of first appearance.
	Rooms []string
	// SeatTypes in vocabulary order, followed by unknown types in order of
	// first appearance.
	SeatTypes []string
	// Counts is indexed by Rooms, then by SeatTypes.
	Counts [][]int
}

// Total returns the number of tallied seats.
func (t SeatTally) Total() (n int) {
	for _, row := range t.Counts {
		for _, c := range row {
			n += c
		}
	}
	return
}

// TallySeats tallies |seats| by status. The open status is ordered first,
// followed by other statuses in order of first appearance.
func TallySeats(cfg *config.Config, seats []allocator.Seat) []SeatTally {
	var statuses = []string{allocator.SeatStatusOpen}
	for _, s := range seats {
		if !slices.Contains(statuses, s.Status) {
			statuses = append(statuses, s.Status)
		}
	}

	var out []SeatTally
	for _, status := range statuses {
		var t = SeatTally{Status: status, SeatTypes: append([]string(nil), cfg.ValidSeatTypes...)}

		for _, s := range seats {
			if s.Status != status {
				continue
			}
			var r = slices.Index(t.Rooms, s.Room)
			if r == -1 {
				r = len(t.Rooms)
				t.Rooms = append(t.Rooms, s.Room)
				t.Counts = append(t.Counts, make([]int, len(t.SeatTypes)))
			}
			var c = slices.Index(t.SeatTypes, s.Type)
			if c == -1 {
				c = len(t.SeatTypes)
				t.SeatTypes = append(t.SeatTypes, s.Type)
				for i := range t.Counts {
					t.Counts[i] = append(t.Counts[i], 0)
				}
			}
			t.Counts[r][c]++
		}
		if len(t.Rooms) != 0 {
			out = append(out, t)
		}
	}
	return out
}

// SeatCheck is the outcome of CheckSeats.
type SeatCheck struct {
	// Rooms and seat types of open seats which aren't in the vocabularies.
	UnknownRooms     []string
	UnknownSeatTypes []string
	// Valid rooms having no open seats.
	MissingRooms []string
	// Seats listed more than once.
	Duplicates []allocator.SeatID
}

// OK returns true if the SeatCheck has no findings.
func (c SeatCheck) OK() bool {
	return len(c.UnknownRooms)+len(c.UnknownSeatTypes)+len(c.MissingRooms)+len(c.Duplicates) == 0
}

// CheckSeats validates |seats| against the vocabularies of |cfg|.
func CheckSeats(cfg *config.Config, seats []allocator.Seat) SeatCheck {
	var out SeatCheck
	var seen = make(map[allocator.SeatID]int)
	var rooms = make(map[string]bool)

	for _, s := range seats {
		if seen[s.ID()]++; seen[s.ID()] == 2 {
			out.Duplicates = append(out.Duplicates, s.ID())
		}
		if !s.IsOpen() {
			continue
		}
		rooms[s.Room] = true

		if !cfg.IsRoom(s.Room) && !slices.Contains(out.UnknownRooms, s.Room) {
			out.UnknownRooms = append(out.UnknownRooms, s.Room)
		}
		if !cfg.IsSeatType(s.Type) && !slices.Contains(out.UnknownSeatTypes, s.Type) {
			out.UnknownSeatTypes = append(out.UnknownSeatTypes, s.Type)
		}
	}
	for _, room := range cfg.ValidRooms {
		if !rooms[room] {
			out.MissingRooms = append(out.MissingRooms, room)
		}
	}
	return out
}

// Preview renders the seat tallies, seat checks, and locker mapping of
// |cfg| and |seats| to |w|.
func Preview(w io.Writer, cfg *config.Config, seats []allocator.Seat) error {
	for _, t := range TallySeats(cfg, seats) {
		if err := heading(w, "%s seats (%s)", t.Status, count(t.Total())); err != nil {
			return err
		} else if err = renderTally(w, t); err != nil {
			return err
		}
	}

	if err := heading(w, "seat list checks"); err != nil {
		return err
	} else if err = renderSeatCheck(w, CheckSeats(cfg, seats)); err != nil {
		return err
	}

	if err := heading(w, "locker mapping"); err != nil {
		return err
	} else if err = renderLockers(w, cfg, seats); err != nil {
		return err
	}

	var restricted = "(none)"
	if len(cfg.RestrictedRooms) != 0 {
		restricted = strings.Join(cfg.RestrictedRooms, ", ")
	}
	var _, err = fmt.Fprintf(w, "\nrestricted rooms: %s\n", restricted)
	return err
}

func renderTally(w io.Writer, t SeatTally) error {
	var header = append(append([]string{"Room"}, t.SeatTypes...), "Total")
	var totals = make([]int, len(t.SeatTypes))
	var rows [][]string

	for r, room := range t.Rooms {
		var row = []string{room}
		var sum int
		for c, n := range t.Counts[r] {
			row = append(row, count(n))
			totals[c] += n
			sum += n
		}
		rows = append(rows, append(row, count(sum)))
	}

	var footer = []string{"Total"}
	for _, n := range totals {
		footer = append(footer, count(n))
	}
	footer = append(footer, count(t.Total()))

	return table(w, header, rows, footer)
}

func renderSeatCheck(w io.Writer, c SeatCheck) error {
	if c.OK() {
		var _, err = fmt.Fprintln(w, "no findings")
		return err
	}
	var rows [][]string
	for _, r := range c.UnknownRooms {
		rows = append(rows, []string{"unknown room", r})
	}
	for _, st := range c.UnknownSeatTypes {
		rows = append(rows, []string{"unknown seat type", st})
	}
	for _, r := range c.MissingRooms {
		rows = append(rows, []string{"room without open seats", r})
	}
	for _, id := range c.Duplicates {
		rows = append(rows, []string{"duplicate seat", id.String()})
	}
	return table(w, []string{"Finding", "Value"}, rows, nil)
}

func renderLockers(w io.Writer, cfg *config.Config, seats []allocator.Seat) error {
	var open = make(map[string]int)
	for _, s := range seats {
		if s.IsOpen() {
			open[s.Room]++
		}
	}

	var rows [][]string
	var seatTotal int

	for _, rr := range cfg.Lockers {
		for i, r := range rr.Ranges {
			var room, seatCount = rr.Room, itoa(open[rr.Room])
			if i != 0 {
				room, seatCount = OverflowMarker, ""
			}
			rows = append(rows, []string{room, r.Location, fmt.Sprintf("%d~%d", r.Start, r.End), count(r.Capacity()), seatCount})
		}
		if len(rr.Ranges) > 1 {
			rows = append(rows, []string{"", "subtotal", "", count(rr.Capacity()), ""})
		}
		seatTotal += open[rr.Room]
	}
	return table(w, []string{"Room", "Location", "Lockers", "Capacity", "Open Seats"}, rows,
		[]string{"Total", "", "", count(cfg.Lockers.Capacity()), count(seatTotal)})
}
