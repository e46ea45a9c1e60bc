// Package config loads and validates the allocation policy of a seatdraw
// deployment: its vocabularies of rooms, applicant classes, and seat types,
// the ordered allocation phases, and the locker table.
package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/locker"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// maxLabelLength bounds the length of vocabulary labels.
const maxLabelLength = 256

// Config is the allocation policy of a deployment.
type Config struct {
	// Vocabularies against which all other fields, and input files, are checked.
	ValidRooms     []string `yaml:"valid_rooms"`
	ValidClasses   []string `yaml:"valid_classes"`
	ValidSeatTypes []string `yaml:"valid_seat_types"`

	// ClassToSeatType maps an applicant class to the seat type it's
	// preferentially matched into. Unmapped classes prefer a seat type
	// of the same name.
	ClassToSeatType map[string]string `yaml:"class_to_seat_type"`
	// RestrictedRooms are amenity-restricted rooms, which the remainder
	// allocator fills last.
	RestrictedRooms []string `yaml:"restricted_rooms"`

	// Phases of a normal run, executed in order.
	Phases []allocator.Phase `yaml:"phases"`
	// AddModePhases are indices of Phases executed by an incremental run.
	AddModePhases []int `yaml:"add_mode_phases"`

	Lockers locker.Table `yaml:"lockers"`

	// StatsGroups are cohorts of classes reported together by statistics.
	StatsGroups []StatsGroup `yaml:"stats_groups,omitempty"`
	// RosterClassCodes maps class codes of the registry roster to classes.
	RosterClassCodes map[string]string `yaml:"roster_class_codes,omitempty"`
}

// StatsGroup is a labeled cohort of classes.
type StatsGroup struct {
	Label   string   `yaml:"label"`
	Classes []string `yaml:"classes"`
}

// Load the Config at |path| of |fs|, and validate it.
func Load(fs afero.Fs, path string) (*Config, error) {
	var b, err = afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.WithMessage(err, "reading config")
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, errors.WithMessagef(err, "config %s", path)
	}
	return cfg, nil
}

// Parse the YAML Config of |b|, and validate it. Unknown fields are an error.
func Parse(b []byte) (*Config, error) {
	var cfg = new(Config)
	if err := yaml.UnmarshalStrict(b, cfg); err != nil {
		return nil, errors.WithMessage(err, "decoding")
	} else if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns all violations of the Config, each as a *ValidationError,
// combined with multierr.
func (c *Config) Validate() error {
	var err error
	var add = func(e error) { err = multierr.Append(err, e) }

	var rooms = vocabulary("valid_rooms", c.ValidRooms, add)
	var classes = vocabulary("valid_classes", c.ValidClasses, add)
	var seatTypes = vocabulary("valid_seat_types", c.ValidSeatTypes, add)

	for _, class := range slices.Sorted(maps.Keys(c.ClassToSeatType)) {
		if !classes[class] {
			add(ExtendContext(NewValidationError("unknown class %q", class), "class_to_seat_type"))
		}
		if st := c.ClassToSeatType[class]; !seatTypes[st] {
			add(ExtendContext(NewValidationError("unknown seat type %q (of class %q)", st, class), "class_to_seat_type"))
		}
	}
	for i, room := range c.RestrictedRooms {
		if !rooms[room] {
			add(ExtendContext(NewValidationError("unknown room %q", room), "restricted_rooms[%d]", i))
		}
	}

	if len(c.Phases) == 0 {
		add(ExtendContext(NewValidationError("expected at least one phase"), "phases"))
	}
	for i, p := range c.Phases {
		if e := p.Validate(); e != nil {
			add(&ValidationError{Context: []string{indexed("phases", i)}, Err: e})
		}
		for _, class := range p.Classes {
			if !classes[class] {
				add(ExtendContext(NewValidationError("unknown class %q", class), "%s.classes", indexed("phases", i)))
			}
		}
		for _, st := range p.SeatTypes {
			if !seatTypes[st] {
				add(ExtendContext(NewValidationError("unknown seat type %q", st), "%s.seat_types", indexed("phases", i)))
			}
		}
	}
	if _, e := allocator.SelectPhases(c.Phases, c.AddModePhases); e != nil {
		add(&ValidationError{Context: []string{"add_mode_phases"}, Err: e})
	}

	for _, e := range multierr.Errors(c.Lockers.Validate()) {
		add(&ValidationError{Context: []string{"lockers"}, Err: e})
	}
	for i, rr := range c.Lockers {
		if rr.Room != "" && !rooms[rr.Room] {
			add(ExtendContext(NewValidationError("unknown room %q", rr.Room), "%s.room", indexed("lockers", i)))
		}
	}

	for i, g := range c.StatsGroups {
		if g.Label == "" {
			add(ExtendContext(NewValidationError("expected label"), "%s.label", indexed("stats_groups", i)))
		}
		if len(g.Classes) == 0 {
			add(ExtendContext(NewValidationError("expected at least one class"), "%s.classes", indexed("stats_groups", i)))
		}
		for _, class := range g.Classes {
			if !classes[class] {
				add(ExtendContext(NewValidationError("unknown class %q", class), "%s.classes", indexed("stats_groups", i)))
			}
		}
	}
	for _, code := range slices.Sorted(maps.Keys(c.RosterClassCodes)) {
		if class := c.RosterClassCodes[code]; !classes[class] {
			add(ExtendContext(NewValidationError("unknown class %q (of code %q)", class, code), "roster_class_codes"))
		}
	}
	return err
}

// vocabulary validates |labels| of the named vocabulary, and returns them as a set.
func vocabulary(name string, labels []string, add func(error)) map[string]bool {
	var set = make(map[string]bool, len(labels))

	if len(labels) == 0 {
		add(ExtendContext(NewValidationError("expected at least one entry"), "%s", name))
	}
	for i, l := range labels {
		if err := ValidateLabel(l, maxLabelLength); err != nil {
			add(ExtendContext(err, "%s", indexed(name, i)))
		} else if set[l] {
			add(ExtendContext(NewValidationError("duplicate entry %q", l), "%s", indexed(name, i)))
		}
		set[l] = true
	}
	return set
}

// Policy returns the allocator.Policy of the Config.
func (c *Config) Policy() allocator.Policy {
	return allocator.Policy{
		SeatTypes:       c.ClassToSeatType,
		RestrictedRooms: c.RestrictedRooms,
	}
}

// Groups returns the configured StatsGroups or, if there are none, a group
// for each valid class.
func (c *Config) Groups() []StatsGroup {
	if len(c.StatsGroups) != 0 {
		return c.StatsGroups
	}
	var out = make([]StatsGroup, 0, len(c.ValidClasses))
	for _, class := range c.ValidClasses {
		out = append(out, StatsGroup{Label: class, Classes: []string{class}})
	}
	return out
}

// IsRoom returns true if |room| is a valid room.
func (c *Config) IsRoom(room string) bool { return slices.Contains(c.ValidRooms, room) }

// IsClass returns true if |class| is a valid applicant class.
func (c *Config) IsClass(class string) bool { return slices.Contains(c.ValidClasses, class) }

// IsSeatType returns true if |st| is a valid seat type.
func (c *Config) IsSeatType(st string) bool { return slices.Contains(c.ValidSeatTypes, st) }

func indexed(name string, i int) string { return fmt.Sprintf("%s[%d]", name, i) }
