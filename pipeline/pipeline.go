// Package pipeline composes the allocation engine with its file adapters:
// it reads operator inputs, runs seat and locker allocation in normal or
// incremental ("add") mode, and writes published results. Every result is
// computed before the first file is written, so a failed run leaves prior
// outputs untouched.
package pipeline

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.seatdraw.dev/core/archive"
	"go.seatdraw.dev/core/config"
)

// Mode of a run.
type Mode string

const (
	// Normal runs allocate the full population, and truncate prior results.
	Normal Mode = "normal"
	// Add runs allocate only applicants absent from published results, and
	// append to them.
	Add Mode = "add"
)

// Validate returns an error if the Mode is not known.
func (m Mode) Validate() error {
	switch m {
	case Normal, Add:
		return nil
	default:
		return errors.Errorf("unknown mode %q (expected normal or add)", string(m))
	}
}

// Paths of the files read and written by runs.
type Paths struct {
	Input                  string `long:"input" env:"INPUT" default:"input/input_data.csv" description:"Application form export"`
	Seats                  string `long:"seats" env:"SEATS" default:"input/seatlist.csv" description:"Seat list"`
	SeatResult             string `long:"seat-result" env:"SEAT_RESULT" default:"output/seat_result.csv" description:"Published seat result"`
	SeatResultAdditional   string `long:"seat-result-additional" env:"SEAT_RESULT_ADDITIONAL" default:"output/seat_result_additional.csv" description:"Seat result of the latest add run"`
	UnmatchedApplicants    string `long:"unmatched-applicants" env:"UNMATCHED_APPLICANTS" default:"output/seat_unmatched_student.csv" description:"Applicants left without a seat"`
	UnmatchedAdditional    string `long:"unmatched-applicants-additional" env:"UNMATCHED_APPLICANTS_ADDITIONAL" default:"output/seat_unmatched_student_additional.csv" description:"Applicants left without a seat by the latest add run"`
	UnmatchedSeats         string `long:"unmatched-seats" env:"UNMATCHED_SEATS" default:"output/seat_unmatched_seat.csv" description:"Open seats left unfilled, and closed seats"`
	LockerResult           string `long:"locker-result" env:"LOCKER_RESULT" default:"output/seat_locker_result.csv" description:"Published locker result"`
	LockerResultAdditional string `long:"locker-result-additional" env:"LOCKER_RESULT_ADDITIONAL" default:"output/seat_locker_result_additional.csv" description:"Locker result of the latest add run"`
	LockerSheet            string `long:"locker-sheet" env:"LOCKER_SHEET" default:"output/seat_locker_result.xlsx" description:"Workbook copy of the locker result (empty to disable)"`
	LockerSheetAdditional  string `long:"locker-sheet-additional" env:"LOCKER_SHEET_ADDITIONAL" default:"output/seat_locker_result_additional.xlsx" description:"Workbook copy of the add run's locker result (empty to disable)"`
}

// Env is the environment of a run.
type Env struct {
	Fs     afero.Fs
	Paths  Paths
	Config *config.Config
	// Archive, if non-nil, records each run.
	Archive *archive.Store
}

// record |fn| against the Archive, if there is one. Steps record before
// writing any output, so that a failure to archive leaves outputs untouched.
func (env *Env) record(fn func(*archive.Store) error) error {
	if env.Archive == nil {
		return nil
	} else if err := fn(env.Archive); err != nil {
		return errors.WithMessage(err, "archiving run")
	}
	return nil
}

func logWrote(path string, rows int) {
	log.WithFields(log.Fields{"path": path, "rows": rows}).Info("wrote file")
}
