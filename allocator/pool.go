package allocator

import (
	"slices"

	"github.com/pkg/errors"
)

// ApplicantPool is an order-preserving collection of Applicants which have
// not yet been assigned. Allocation steps remove Applicants as they're placed.
// Iteration order is always the order in which Applicants were supplied, such
// that a fixed *rand.Rand yields fixed results.
type ApplicantPool struct {
	items []Applicant
	index map[ApplicantKey]int
	live  int
}

// NewApplicantPool returns an ApplicantPool of |applicants|. It's an error for
// two Applicants to share an ApplicantKey.
func NewApplicantPool(applicants []Applicant) (*ApplicantPool, error) {
	var p = &ApplicantPool{
		items: make([]Applicant, 0, len(applicants)),
		index: make(map[ApplicantKey]int, len(applicants)),
	}
	for i, a := range applicants {
		if _, ok := p.index[a.Key]; ok {
			return nil, errors.Errorf("duplicate applicant %s (row %d)", a.Key, i)
		}
		p.index[a.Key] = len(p.items)
		p.items = append(p.items, a)
	}
	p.live = len(p.items)
	return p, nil
}

// Len returns the number of Applicants remaining in the pool.
func (p *ApplicantPool) Len() int { return p.live }

// Contains returns true if |key| remains in the pool.
func (p *ApplicantPool) Contains(key ApplicantKey) bool {
	var _, ok = p.index[key]
	return ok
}

// Get returns the remaining Applicant of |key|.
func (p *ApplicantPool) Get(key ApplicantKey) (Applicant, bool) {
	if i, ok := p.index[key]; ok {
		return p.items[i], true
	}
	return Applicant{}, false
}

// Select returns remaining Applicants having a Class of |classes|, in pool
// order. An empty |classes| selects all remaining Applicants.
func (p *ApplicantPool) Select(classes []string) []Applicant {
	var out = make([]Applicant, 0, p.live)
	for _, a := range p.items {
		if !p.Contains(a.Key) {
			continue
		}
		if len(classes) != 0 && !slices.Contains(classes, a.Class) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Remaining returns all remaining Applicants, in pool order.
func (p *ApplicantPool) Remaining() []Applicant { return p.Select(nil) }

// Remove the Applicant of |key| from the pool. It returns false if the
// Applicant was not present.
func (p *ApplicantPool) Remove(key ApplicantKey) bool {
	if _, ok := p.index[key]; !ok {
		return false
	}
	delete(p.index, key)
	p.live--
	return true
}

// SeatPool is an order-preserving collection of open Seats which have not
// yet been assigned. Seats which are not open are retained separately, and
// never assigned.
type SeatPool struct {
	items  []Seat
	index  map[SeatID]int
	live   int
	closed []Seat
}

// NewSeatPool returns a SeatPool of the open Seats of |seats|. Seats which are
// not open are available through Closed. It's an error for two Seats (open or
// not) to share a SeatID.
func NewSeatPool(seats []Seat) (*SeatPool, error) {
	var p = &SeatPool{
		items: make([]Seat, 0, len(seats)),
		index: make(map[SeatID]int, len(seats)),
	}
	var seen = make(map[SeatID]struct{}, len(seats))

	for i, s := range seats {
		var id = s.ID()
		if _, ok := seen[id]; ok {
			return nil, errors.Errorf("duplicate seat %s (row %d)", id, i)
		}
		seen[id] = struct{}{}

		if !s.IsOpen() {
			p.closed = append(p.closed, s)
			continue
		}
		p.index[id] = len(p.items)
		p.items = append(p.items, s)
	}
	p.live = len(p.items)
	return p, nil
}

// Len returns the number of open Seats remaining in the pool.
func (p *SeatPool) Len() int { return p.live }

// Contains returns true if the open Seat |id| remains in the pool.
func (p *SeatPool) Contains(id SeatID) bool {
	var _, ok = p.index[id]
	return ok
}

// Remaining returns remaining open Seats, in pool order.
func (p *SeatPool) Remaining() []Seat { return p.Filter(nil) }

// Filter returns remaining open Seats for which |fn| returns true, in pool
// order. A nil |fn| matches all Seats.
func (p *SeatPool) Filter(fn func(Seat) bool) []Seat {
	var out []Seat
	for _, s := range p.items {
		if !p.Contains(s.ID()) {
			continue
		}
		if fn == nil || fn(s) {
			out = append(out, s)
		}
	}
	return out
}

// Remove the Seat |id| from the pool. It returns false if the Seat was not
// present.
func (p *SeatPool) Remove(id SeatID) bool {
	if _, ok := p.index[id]; !ok {
		return false
	}
	delete(p.index, id)
	p.live--
	return true
}

// Closed returns Seats which were not open, and were excluded from the pool.
func (p *SeatPool) Closed() []Seat { return p.closed }

