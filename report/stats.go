package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/config"
)

// StatsRow counts the demand for, and winners of, a Room within a Group.
type StatsRow struct {
	Room  string
	Group string
	// Applicants of the Group naming Room as their first choice.
	FirstChoice int
	// Winners of the Room by the rank they gave it: 1st, 2nd, and 3rd
	// choice, and finally Room not being among their preferences.
	Winners [allocator.NumPreferences + 1]int
}

// Contested returns true if the Room turned away first-choice applicants,
// yet was won by applicants who ranked it lower or not at all.
func (r StatsRow) Contested() bool {
	var lower int
	for _, n := range r.Winners[1:] {
		lower += n
	}
	return r.FirstChoice > r.Winners[0] && lower != 0
}

// Stats is the outcome of ComputeStats.
type Stats struct {
	Rows []StatsRow
	// Placements not matching any applicant.
	Unjoined []allocator.Placement
}

// ComputeStats joins |placements| with |applicants| by pseudonym, and counts
// first-choice demand and winners of each room, by each of |groups|. An
// applicant belongs to every group listing its class. Rows are ordered by
// room, and then by group.
func ComputeStats(groups []config.StatsGroup, applicants []allocator.Applicant, placements []allocator.Placement) *Stats {
	var out = new(Stats)
	var index = make(map[[2]string]int)

	var row = func(room string, g int) *StatsRow {
		var key = [2]string{room, groups[g].Label}
		if i, ok := index[key]; ok {
			return &out.Rows[i]
		}
		index[key] = len(out.Rows)
		out.Rows = append(out.Rows, StatsRow{Room: room, Group: groups[g].Label})
		return &out.Rows[len(out.Rows)-1]
	}
	var member = func(class string) (out []int) {
		for g := range groups {
			if slices.Contains(groups[g].Classes, class) {
				out = append(out, g)
			}
		}
		return
	}

	var byPseudonym = make(map[string]allocator.Applicant, len(applicants))
	for _, a := range applicants {
		byPseudonym[a.Key.Pseudonym()] = a

		for _, g := range member(a.Class) {
			row(a.Prefers(1), g).FirstChoice++
		}
	}
	for _, p := range placements {
		var a, ok = byPseudonym[p.Pseudonym()]
		if !ok {
			out.Unjoined = append(out.Unjoined, p)
			continue
		}
		var rank = slices.Index(a.Preferences[:], p.Room)
		if rank == -1 {
			rank = allocator.NumPreferences
		}
		for _, g := range member(a.Class) {
			row(p.Room, g).Winners[rank]++
		}
	}

	var order = make(map[string]int, len(groups))
	for g := range groups {
		order[groups[g].Label] = g
	}
	slices.SortStableFunc(out.Rows, func(a, b StatsRow) int {
		if c := strings.Compare(a.Room, b.Room); c != 0 {
			return c
		}
		return order[a.Group] - order[b.Group]
	})
	return out
}

// RenderStats renders |s| to |w|. Unless |all|, only contested rows are shown.
func RenderStats(w io.Writer, s *Stats, all bool) error {
	var rows [][]string
	for _, r := range s.Rows {
		if !all && !r.Contested() {
			continue
		}
		rows = append(rows, []string{
			r.Room,
			r.Group,
			count(r.FirstChoice),
			count(r.Winners[0]),
			count(r.Winners[1]),
			count(r.Winners[2]),
			count(r.Winners[3]),
		})
	}

	if len(s.Unjoined) != 0 {
		if _, err := fmt.Fprintf(w, "%d placements matched no applicant\n", len(s.Unjoined)); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		var _, err = fmt.Fprintln(w, "no contested rooms")
		return err
	}
	return table(w, []string{"Room", "Group", "1st-Choice Applicants", "Won 1st", "Won 2nd", "Won 3rd", "Won Unranked"}, rows, nil)
}
