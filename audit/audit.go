// Package audit inspects allocation inputs and outputs: it fingerprints files
// for integrity logs, checks applications for duplicated identities and
// invalid values, and cross-checks applications against a registry roster.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/config"
	"go.seatdraw.dev/core/records"
)

// HashFile returns the hex SHA-256 digest and size of file |path| of |fs|.
func HashFile(fs afero.Fs, path string) (string, int64, error) {
	var f, err = fs.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var h = sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, errors.WithMessagef(err, "hashing %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// HashBytes returns the hex SHA-256 digest of |b|.
func HashBytes(b []byte) string {
	var sum = sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// LogFileHash hashes file |path| of |fs| and logs its digest under |label|.
func LogFileHash(fs afero.Fs, label, path string) (string, error) {
	var sum, size, err = HashFile(fs, path)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{
		"path":   path,
		"size":   humanize.Bytes(uint64(size)),
		"sha256": sum,
	}).Info(label)
	return sum, nil
}

// Duplicate is a value which occurs on more than one Line.
type Duplicate struct {
	Value string
	Lines []int
}

// Invalid is a field Value which isn't in its vocabulary.
type Invalid struct {
	Line  int
	Name  string
	Field string
	Value string
}

// InputReport is the outcome of CheckInput.
type InputReport struct {
	Applicants int
	OpenSeats  int

	DuplicateEmails     []Duplicate
	DuplicateIDs        []Duplicate
	DuplicatePseudonyms []Duplicate
	Invalid             []Invalid
}

// CheckInput audits |apps| against |seats| and the vocabularies of |cfg|.
func CheckInput(apps []records.Application, seats []allocator.Seat, cfg *config.Config) *InputReport {
	var r = &InputReport{Applicants: len(apps)}
	var emails, ids, pseudonyms = newDupes(), newDupes(), newDupes()

	for _, a := range apps {
		var key = a.Applicant.Key

		emails.add(a.Email, a.Line)
		ids.add(key.ID, a.Line)
		pseudonyms.add(key.Pseudonym(), a.Line)

		if !cfg.IsClass(a.Applicant.Class) {
			r.Invalid = append(r.Invalid, Invalid{Line: a.Line, Name: key.Name, Field: "class", Value: a.Applicant.Class})
		}
		for i, room := range a.Applicant.Preferences {
			if !cfg.IsRoom(room) {
				r.Invalid = append(r.Invalid, Invalid{Line: a.Line, Name: key.Name, Field: prefField(i), Value: room})
			}
		}
	}
	for _, s := range seats {
		if s.IsOpen() {
			r.OpenSeats++
		}
	}
	r.DuplicateEmails = emails.result()
	r.DuplicateIDs = ids.result()
	r.DuplicatePseudonyms = pseudonyms.result()

	return r
}

// Shortfall returns the number of Applicants in excess of open Seats.
func (r *InputReport) Shortfall() int { return max(0, r.Applicants-r.OpenSeats) }

// Err returns an error if the applications carry invalid values.
func (r *InputReport) Err() error {
	if len(r.Invalid) != 0 {
		return errors.Errorf("applications have %d invalid values", len(r.Invalid))
	}
	return nil
}

// Log the findings of the InputReport.
func (r *InputReport) Log() {
	for _, d := range []struct {
		what  string
		dupes []Duplicate
	}{
		{"email", r.DuplicateEmails},
		{"id", r.DuplicateIDs},
		{"pseudonym", r.DuplicatePseudonyms},
	} {
		for _, dup := range d.dupes {
			log.WithFields(log.Fields{d.what: dup.Value, "lines": dup.Lines}).Warn("duplicated applicant " + d.what)
		}
	}
	for _, inv := range r.Invalid {
		log.WithFields(log.Fields{
			"line":  inv.Line,
			"name":  inv.Name,
			"field": inv.Field,
			"value": inv.Value,
		}).Error("invalid application value")
	}
	if n := r.Shortfall(); n != 0 {
		log.WithFields(log.Fields{
			"applicants": r.Applicants,
			"openSeats":  r.OpenSeats,
		}).Warn("fewer open seats than applicants")
	}
}

func prefField(i int) string { return [...]string{"pref1", "pref2", "pref3"}[i] }

// dupes tracks the lines of values, in order of first occurrence.
type dupes struct {
	order []string
	lines map[string][]int
}

func newDupes() *dupes { return &dupes{lines: make(map[string][]int)} }

func (d *dupes) add(value string, line int) {
	if _, ok := d.lines[value]; !ok {
		d.order = append(d.order, value)
	}
	d.lines[value] = append(d.lines[value], line)
}

func (d *dupes) result() []Duplicate {
	var out []Duplicate
	for _, v := range d.order {
		if l := d.lines[v]; len(l) > 1 {
			out = append(out, Duplicate{Value: v, Lines: l})
		}
	}
	return out
}
