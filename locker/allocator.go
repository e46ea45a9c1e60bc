package locker

import (
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/allocator"
)

// Locker is an issued, numbered locker at a Location.
type Locker struct {
	Location string
	Number   int
}

// Assignment of a Locker to a published seat Placement.
type Assignment struct {
	Placement allocator.Placement
	Locker    Locker
}

// Shortfall counts Placements of a Room which could not be issued a Locker,
// either because the Room has no Ranges or because all were exhausted.
type Shortfall struct {
	Room  string
	Count int
}

// Outcome of a Distribute.
type Outcome struct {
	// Assigned Lockers, in issue order.
	Assigned []Assignment
	// Failed rooms, in order of their first failure.
	Failed []Shortfall
}

// Shortfall returns the total number of Placements which failed assignment.
func (o *Outcome) Shortfall() (n int) {
	for _, f := range o.Failed {
		n += f.Count
	}
	return
}

// RangeUsage reports the issued and remaining lockers of a Range.
type RangeUsage struct {
	Room      string
	Range     Range
	Issued    int
	Remaining int
}

// Allocator issues Lockers from a Table. Each Range of the Table has a cursor,
// being the next locker number it will issue. Cursors only ever advance.
type Allocator struct {
	table   Table
	cursors [][]int // Indexed by room, then range, of |table|.
}

// New returns an Allocator with all cursors at their Range starts.
func New(table Table) *Allocator {
	var a = &Allocator{
		table:   table,
		cursors: make([][]int, len(table)),
	}
	for i, rr := range table {
		a.cursors[i] = make([]int, len(rr.Ranges))
		for j, r := range rr.Ranges {
			a.cursors[i][j] = r.Start
		}
	}
	return a
}

// Assign issues the next Locker of |room|, overflowing through its Ranges in
// order. It returns false if |room| has no Ranges or all are exhausted.
func (a *Allocator) Assign(room string) (Locker, bool) {
	for i, rr := range a.table {
		if rr.Room != room {
			continue
		}
		for j, r := range rr.Ranges {
			if cur := a.cursors[i][j]; cur <= r.End {
				a.cursors[i][j]++
				lockersIssuedTotal.Inc()
				return Locker{Location: r.Location, Number: cur}, true
			}
		}
		break
	}
	return Locker{}, false
}

// Distribute uniformly shuffles |placements| and then issues each a Locker of
// its Room. |placements| is not modified.
func (a *Allocator) Distribute(rng *rand.Rand, placements []allocator.Placement) *Outcome {
	var order = append([]allocator.Placement(nil), placements...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	var out = new(Outcome)
	var failed = make(map[string]int)

	for _, p := range order {
		var l, ok = a.Assign(p.Room)
		if !ok {
			if _, seen := failed[p.Room]; !seen {
				failed[p.Room] = len(out.Failed)
				out.Failed = append(out.Failed, Shortfall{Room: p.Room})
			}
			out.Failed[failed[p.Room]].Count++
			lockerShortfallsTotal.WithLabelValues(p.Room).Inc()
			continue
		}
		out.Assigned = append(out.Assigned, Assignment{Placement: p, Locker: l})
	}

	log.WithFields(log.Fields{
		"placements": len(placements),
		"assigned":   len(out.Assigned),
		"failed":     out.Shortfall(),
	}).Debug("distributed lockers")

	return out
}

// Resume advances cursors past |issued| Lockers. Each is attributed to the
// first Range, in Table order, of the same Location which contains its Number,
// and that Range's cursor becomes at least Number+1. Resume returns the count
// of |issued| Lockers which fall within no Range.
func (a *Allocator) Resume(issued []Locker) (unmatched int) {
	for _, l := range issued {
		if !a.resumeOne(l) {
			unmatched++
		}
	}
	return
}

func (a *Allocator) resumeOne(l Locker) bool {
	for i, rr := range a.table {
		for j, r := range rr.Ranges {
			if r.Location == l.Location && r.Contains(l.Number) {
				a.cursors[i][j] = max(a.cursors[i][j], l.Number+1)
				return true
			}
		}
	}
	return false
}

// Usage reports the issued and remaining lockers of every Range, in Table order.
func (a *Allocator) Usage() []RangeUsage {
	var out []RangeUsage
	for i, rr := range a.table {
		for j, r := range rr.Ranges {
			var cur = a.cursors[i][j]
			out = append(out, RangeUsage{
				Room:      rr.Room,
				Range:     r,
				Issued:    cur - r.Start,
				Remaining: r.End - cur + 1,
			})
		}
	}
	return out
}
