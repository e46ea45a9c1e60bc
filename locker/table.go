package locker

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Range is an inclusive, numbered range of lockers at a Location.
type Range struct {
	Location string `yaml:"location"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
}

// Capacity returns the number of lockers of the Range.
func (r Range) Capacity() int { return r.End - r.Start + 1 }

// Contains returns true if locker |number| falls within the Range.
func (r Range) Contains(number int) bool { return r.Start <= number && number <= r.End }

// Validate returns an error if the Range is not well-formed.
func (r Range) Validate() error {
	if r.Location == "" {
		return errors.New("expected location")
	} else if r.Start < 1 {
		return errors.Errorf("expected start >= 1 (got %d)", r.Start)
	} else if r.End < r.Start {
		return errors.Errorf("expected end >= start (got %d < %d)", r.End, r.Start)
	}
	return nil
}

func (r Range) String() string { return fmt.Sprintf("%s %d~%d", r.Location, r.Start, r.End) }

// RoomRanges are the ordered locker Ranges of a Room. Lockers are issued from
// the first Range having capacity.
type RoomRanges struct {
	Room   string  `yaml:"room"`
	Ranges []Range `yaml:"ranges"`
}

// Capacity returns the total capacity of all Ranges of the RoomRanges.
func (rr RoomRanges) Capacity() (n int) {
	for _, r := range rr.Ranges {
		n += r.Capacity()
	}
	return
}

// Table maps rooms to their locker Ranges, in configured order.
type Table []RoomRanges

// Validate returns an error if the Table is not well-formed: rooms must be
// unique, each must have Ranges, each Range must be valid, and no two Ranges
// of the same Location may overlap (such that an issued locker identifies
// exactly one Range). All violations are returned.
func (t Table) Validate() error {
	var err error
	var rooms = make(map[string]bool, len(t))

	for i, rr := range t {
		if rr.Room == "" {
			err = multierr.Append(err, errors.Errorf("[%d].room: expected room", i))
		} else if rooms[rr.Room] {
			err = multierr.Append(err, errors.Errorf("[%d].room: duplicate room %q", i, rr.Room))
		}
		rooms[rr.Room] = true

		if len(rr.Ranges) == 0 {
			err = multierr.Append(err, errors.Errorf("[%d].ranges: room %q has no locker ranges", i, rr.Room))
		}
		for j, r := range rr.Ranges {
			if rErr := r.Validate(); rErr != nil {
				err = multierr.Append(err, errors.WithMessagef(rErr, "[%d].ranges[%d]", i, j))
			}
		}
	}

	var all = t.ranges()
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			var a, b = all[i], all[j]
			if a.Location == b.Location && a.Start <= b.End && b.Start <= a.End {
				err = multierr.Append(err, errors.Errorf("locker ranges overlap: %s and %s", a, b))
			}
		}
	}
	return err
}

// Room returns the RoomRanges of |room|.
func (t Table) Room(room string) (RoomRanges, bool) {
	for _, rr := range t {
		if rr.Room == room {
			return rr, true
		}
	}
	return RoomRanges{}, false
}

// Capacity returns the total capacity of the Table.
func (t Table) Capacity() (n int) {
	for _, rr := range t {
		n += rr.Capacity()
	}
	return
}

func (t Table) ranges() (out []Range) {
	for _, rr := range t {
		out = append(out, rr.Ranges...)
	}
	return
}
