package pipeline

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/archive"
	"go.seatdraw.dev/core/audit"
	"go.seatdraw.dev/core/metrics"
	"go.seatdraw.dev/core/records"
)

// SeatsOutcome is the outcome of Seats.
type SeatsOutcome struct {
	Mode   Mode
	Seed   uint64
	Result *allocator.Result
	// Closed seats, which pass through allocation unassigned.
	Closed []allocator.Seat
}

// Seats allocates seats under |mode|.
//
// A Normal run allocates all applications of Paths.Input to open seats of
// Paths.Seats using an ambient seed, and writes Paths.SeatResult,
// Paths.UnmatchedApplicants, and Paths.UnmatchedSeats.
//
// An Add run allocates applications of Paths.Input not yet published to
// Paths.SeatResult, to seats of Paths.UnmatchedSeats, using the add-mode
// phases and a seed derived from the bytes of Paths.Input. If |expected| is
// non-nil, the number of such applications must equal it. Its placements are
// written to Paths.SeatResultAdditional and appended to Paths.SeatResult, its
// unassigned applicants are written to Paths.UnmatchedAdditional, and
// Paths.UnmatchedSeats is rewritten without the newly taken seats.
//
// Either mode records the run to the Env's Archive before writing outputs.
func Seats(ctx context.Context, env *Env, mode Mode, expected *int) (*SeatsOutcome, error) {
	var out, err = seats(ctx, env, mode, expected)
	metrics.StepsTotal.WithLabelValues("seats", string(mode), metrics.Status(err)).Inc()
	return out, err
}

func seats(ctx context.Context, env *Env, mode Mode, expected *int) (*SeatsOutcome, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	var input, err = afero.ReadFile(env.Fs, env.Paths.Input)
	if err != nil {
		return nil, errors.WithMessage(err, "reading applications")
	}
	apps, err := records.Decode[records.Application](bytes.NewReader(input))
	if err != nil {
		return nil, errors.WithMessage(err, env.Paths.Input)
	}
	var applicants = records.Applicants(apps)
	var out = &SeatsOutcome{Mode: mode}

	var seatsPath = env.Paths.Seats

	if mode == Add {
		published, err := records.Read[records.Placement](env.Fs, env.Paths.SeatResult)
		if err != nil {
			return nil, errors.WithMessage(err, "reading published seat result")
		}
		applicants = allocator.Unassigned(applicants, records.UnwrapPlacements(published))

		log.WithFields(log.Fields{
			"applications": len(apps),
			"published":    len(published),
			"additional":   len(applicants),
		}).Info("found additional applicants")

		if err = allocator.CheckExpected(expected, len(applicants)); err != nil {
			return nil, err
		}
		seatsPath = env.Paths.UnmatchedSeats
		out.Seed = allocator.SeedFromBytes(input)
	} else {
		out.Seed = allocator.AmbientSeed()
	}

	seatRows, err := records.Read[records.Seat](env.Fs, seatsPath)
	if err != nil {
		return nil, errors.WithMessage(err, "reading seats")
	}
	applicantPool, err := allocator.NewApplicantPool(applicants)
	if err != nil {
		return nil, err
	}
	seatPool, err := allocator.NewSeatPool(records.UnwrapSeats(seatRows))
	if err != nil {
		return nil, errors.WithMessage(err, seatsPath)
	}
	log.WithFields(log.Fields{"mode": mode, "seed": out.Seed}).Debug("seeded seat allocation")

	var alloc = &allocator.Allocator{Policy: env.Config.Policy(), Rand: allocator.NewRand(out.Seed)}
	if mode == Add {
		out.Result, err = alloc.RunSelected(applicantPool, seatPool, env.Config.Phases, env.Config.AddModePhases)
	} else {
		out.Result, err = alloc.Run(applicantPool, seatPool, env.Config.Phases)
	}
	if err != nil {
		return nil, err
	}
	out.Closed = seatPool.Closed()
	logSeatsOutcome(out)

	var placements = out.Result.Assignments.Placements()
	var leftover = append(append([]allocator.Seat(nil), out.Result.Unfilled...), out.Closed...)

	var rows = records.WrapPlacements(placements)
	var unassigned = records.WrapUnassigned(out.Result.Unassigned)

	if err = env.record(func(s *archive.Store) error {
		var run = archive.NewRun("seats", string(mode), out.Seed, audit.HashBytes(input))
		run.Shortfall = len(out.Result.Unassigned)
		return s.RecordSeats(ctx, run, placements)
	}); err != nil {
		return nil, err
	}

	if mode == Normal {
		if err = write(env.Fs, env.Paths.SeatResult, records.PlacementHeader, rows, records.Truncate); err == nil {
			err = write(env.Fs, env.Paths.UnmatchedApplicants, records.UnassignedHeader, unassigned, records.Truncate)
		}
	} else {
		if err = write(env.Fs, env.Paths.SeatResultAdditional, records.PlacementHeader, rows, records.Truncate); err == nil {
			err = write(env.Fs, env.Paths.SeatResult, records.PlacementHeader, rows, records.Append)
		}
		if err == nil {
			err = write(env.Fs, env.Paths.UnmatchedAdditional, records.UnassignedHeader, unassigned, records.Truncate)
		}
	}
	if err == nil {
		err = write(env.Fs, env.Paths.UnmatchedSeats, records.SeatHeader, records.WrapSeats(leftover), records.Truncate)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func logSeatsOutcome(out *SeatsOutcome) {
	for _, p := range out.Result.Phases {
		log.WithFields(log.Fields{
			"phase":     p.Name,
			"index":     p.Index,
			"type":      p.Type,
			"entering":  p.Entering,
			"assigned":  p.Assigned,
			"remaining": p.Remaining,
		}).Info("allocation phase")
	}

	var firstChoice int
	for _, a := range out.Result.Assignments {
		if a.FirstChoice() {
			firstChoice++
		}
	}
	log.WithFields(log.Fields{
		"mode":        out.Mode,
		"assigned":    len(out.Result.Assignments),
		"firstChoice": firstChoice,
		"unfilled":    len(out.Result.Unfilled),
		"closed":      len(out.Closed),
	}).Info("allocated seats")

	for _, a := range out.Result.Unassigned {
		log.WithFields(log.Fields{
			"mode":  out.Mode,
			"key":   a.Key.String(),
			"class": a.Class,
		}).Warn("applicant remains without a seat")
	}
	if n := len(out.Result.Unassigned); n != 0 {
		log.WithField("unassigned", n).Warn("applicants remain without a seat")
	}
}

func write[T records.Marshaler](fs afero.Fs, path string, header []string, rows []T, mode records.Mode) error {
	if err := records.Write(fs, path, header, rows, mode); err != nil {
		return errors.WithMessagef(err, "writing %s", path)
	}
	metrics.RowsWrittenTotal.WithLabelValues(filepath.Base(path)).Add(float64(len(rows)))
	logWrote(path, len(rows))
	return nil
}
