package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"go.seatdraw.dev/core/audit"
)

// RenderInput renders the findings of |r| to |w|.
func RenderInput(w io.Writer, r *audit.InputReport) error {
	if _, err := fmt.Fprintf(w, "%s applicants, %s open seats\n", count(r.Applicants), count(r.OpenSeats)); err != nil {
		return err
	}
	if n := r.Shortfall(); n != 0 {
		if _, err := fmt.Fprintf(w, "shortfall: %s applicants cannot be seated\n", count(n)); err != nil {
			return err
		}
	}

	var dupes [][]string
	for _, d := range []struct {
		what string
		list []audit.Duplicate
	}{
		{"email", r.DuplicateEmails},
		{"id", r.DuplicateIDs},
		{"pseudonym", r.DuplicatePseudonyms},
	} {
		for _, dup := range d.list {
			dupes = append(dupes, []string{d.what, dup.Value, joinInts(dup.Lines)})
		}
	}
	if len(dupes) != 0 {
		if err := heading(w, "duplicates"); err != nil {
			return err
		} else if err = table(w, []string{"Field", "Value", "Lines"}, dupes, nil); err != nil {
			return err
		}
	}

	if len(r.Invalid) != 0 {
		var rows [][]string
		for _, inv := range r.Invalid {
			rows = append(rows, []string{itoa(inv.Line), inv.Name, inv.Field, inv.Value})
		}
		if err := heading(w, "invalid values"); err != nil {
			return err
		} else if err = table(w, []string{"Line", "Name", "Field", "Value"}, rows, nil); err != nil {
			return err
		}
	}
	return nil
}

// RenderRoster renders the findings of |r| to |w|.
func RenderRoster(w io.Writer, r *audit.RosterReport) error {
	if _, err := fmt.Fprintf(w, "%s roster entries, %s applications, %s matched by id\n",
		count(r.RosterEntries), count(r.Applications), count(r.Matched)); err != nil {
		return err
	}

	var rows [][]string
	for _, m := range r.NameMismatches {
		rows = append(rows, []string{"name mismatch", m.ID, fmt.Sprintf("roster %q, applied %q", m.RosterName, m.AppliedName)})
	}
	for _, e := range r.OnLeave {
		rows = append(rows, []string{"on leave", e.ID, e.Name})
	}
	for _, m := range r.ClassMismatches {
		rows = append(rows, []string{"class mismatch", m.ID,
			fmt.Sprintf("%s: code %s is %s, applied as %s", m.Name, m.Code, m.Expected, m.AppliedAs)})
	}
	for _, a := range r.InvalidClasses {
		rows = append(rows, []string{"invalid class", a.Applicant.Key.ID, a.Applicant.Class})
	}
	for _, name := range slices.Sorted(maps.Keys(r.DuplicateNames)) {
		rows = append(rows, []string{"duplicate name", strings.Join(r.DuplicateNames[name], ", "), name})
	}
	for _, e := range r.OnlyRoster {
		rows = append(rows, []string{"not applied", e.ID, e.Name})
	}
	for _, a := range r.OnlyApplications {
		rows = append(rows, []string{"not on roster", a.Applicant.Key.ID, a.Applicant.Key.Name})
	}

	if len(rows) == 0 {
		var _, err = fmt.Fprintln(w, "no findings")
		return err
	}
	return table(w, []string{"Finding", "ID", "Detail"}, rows, nil)
}

func joinInts(v []int) string {
	var s = make([]string, len(v))
	for i := range v {
		s[i] = itoa(v[i])
	}
	return strings.Join(s, ", ")
}
