package audit

import (
	"maps"
	"slices"

	"go.seatdraw.dev/core/records"
)

// RosterReport is the outcome of CompareRoster. Its findings warrant review,
// but none of them are errors.
type RosterReport struct {
	RosterEntries int
	Applications  int
	Matched       int

	NameMismatches  []NameMismatch
	OnLeave         []records.Roster
	ClassMismatches []ClassMismatch
	InvalidClasses  []records.Application
	// DuplicateNames maps an applicant name to the IDs applying under it.
	DuplicateNames map[string][]string
	// OnlyRoster and OnlyApplications are entries without a counterpart, by ID.
	OnlyRoster       []records.Roster
	OnlyApplications []records.Application
}

// NameMismatch is an ID having different names in the roster and applications.
type NameMismatch struct {
	ID          string
	RosterName  string
	AppliedName string
}

// ClassMismatch is an ID whose applied class differs from its roster class.
type ClassMismatch struct {
	ID        string
	Name      string
	Code      string
	Expected  string
	AppliedAs string
}

// CompareRoster cross-checks |apps| against the registry |roster| by ID.
// |classCodes| maps roster class codes to classes; its classes are the only
// ones applicants may apply as. Roster entries of |leaveStatus| are on leave.
// Findings are ordered by ID.
func CompareRoster(roster []records.Roster, apps []records.Application, classCodes map[string]string, leaveStatus string) *RosterReport {
	var r = &RosterReport{
		RosterEntries:  len(roster),
		Applications:   len(apps),
		DuplicateNames: make(map[string][]string),
	}
	var byID = make(map[string]records.Roster, len(roster))
	for _, e := range roster {
		byID[e.ID] = e
	}
	var applied = make(map[string]records.Application, len(apps))
	for _, a := range apps {
		applied[a.Applicant.Key.ID] = a
	}
	var valid = make(map[string]bool, len(classCodes))
	for _, c := range classCodes {
		valid[c] = true
	}

	var names = make(map[string][]string)
	for _, id := range slices.Sorted(maps.Keys(applied)) {
		var a = applied[id]
		var name, class = a.Applicant.Key.Name, a.Applicant.Class
		names[name] = append(names[name], id)

		if len(valid) != 0 && !valid[class] {
			r.InvalidClasses = append(r.InvalidClasses, a)
		}
		var e, ok = byID[id]
		if !ok {
			r.OnlyApplications = append(r.OnlyApplications, a)
			continue
		}
		r.Matched++

		if e.Name != name {
			r.NameMismatches = append(r.NameMismatches, NameMismatch{ID: id, RosterName: e.Name, AppliedName: name})
		}
		if leaveStatus != "" && e.Status == leaveStatus {
			r.OnLeave = append(r.OnLeave, e)
		}
		if expect, ok := classCodes[e.ClassCode]; ok && expect != class {
			r.ClassMismatches = append(r.ClassMismatches, ClassMismatch{
				ID: id, Name: name, Code: e.ClassCode, Expected: expect, AppliedAs: class,
			})
		}
	}
	for name, ids := range names {
		if len(ids) > 1 {
			r.DuplicateNames[name] = ids
		}
	}
	for _, id := range slices.Sorted(maps.Keys(byID)) {
		if _, ok := applied[id]; !ok {
			r.OnlyRoster = append(r.OnlyRoster, byID[id])
		}
	}
	return r
}
