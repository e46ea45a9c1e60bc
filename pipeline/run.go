package pipeline

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/audit"
	"go.seatdraw.dev/core/metrics"
	"go.seatdraw.dev/core/records"
)

// RunOutcome is the outcome of Run.
type RunOutcome struct {
	InputSHA256  string
	LockerSHA256 string
	Input        *audit.InputReport
	Seats        *SeatsOutcome
	Lockers      *LockersOutcome
}

// Run the full pipeline under |mode|: the applications are fingerprinted and
// audited, seats and then lockers are allocated, and the applications and the
// run's locker result are fingerprinted once more. Invalid application values
// fail the run before anything is allocated, as does a change of the
// applications while the run was underway.
func Run(ctx context.Context, env *Env, mode Mode, expected *int) (*RunOutcome, error) {
	var out, err = run(ctx, env, mode, expected)
	metrics.StepsTotal.WithLabelValues("run", string(mode), metrics.Status(err)).Inc()
	return out, err
}

func run(ctx context.Context, env *Env, mode Mode, expected *int) (*RunOutcome, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	var out = new(RunOutcome)
	var err error

	if out.InputSHA256, err = audit.LogFileHash(env.Fs, "applications before run", env.Paths.Input); err != nil {
		return nil, errors.WithMessage(err, "hashing applications")
	}
	if out.Input, err = CheckInput(env, mode); err != nil {
		return nil, err
	}
	out.Input.Log()

	if err = out.Input.Err(); err != nil {
		return nil, err
	}
	if out.Seats, err = Seats(ctx, env, mode, expected); err != nil {
		return nil, errors.WithMessage(err, "allocating seats")
	}
	if out.Lockers, err = Lockers(ctx, env, mode); err != nil {
		return nil, errors.WithMessage(err, "allocating lockers")
	}

	after, err := audit.LogFileHash(env.Fs, "applications after run", env.Paths.Input)
	if err != nil {
		return nil, errors.WithMessage(err, "hashing applications")
	} else if after != out.InputSHA256 {
		return nil, errors.Errorf("applications changed during the run (sha256 %s, then %s)", out.InputSHA256, after)
	}

	var lockerPath = env.Paths.LockerResult
	if mode == Add {
		lockerPath = env.Paths.LockerResultAdditional
	}
	if out.LockerSHA256, err = audit.LogFileHash(env.Fs, "locker result", lockerPath); err != nil {
		return nil, errors.WithMessage(err, "hashing locker result")
	}

	log.WithFields(log.Fields{
		"mode":       mode,
		"seats":      len(out.Seats.Result.Assignments),
		"lockers":    len(out.Lockers.Outcome.Assigned),
		"unassigned": len(out.Seats.Result.Unassigned),
	}).Info("completed run")

	return out, nil
}

// CheckInput audits the applications of |env| against the seats which a run
// of |mode| would allocate. Under Add, only applicants absent from the
// published seat result count toward the shortfall.
func CheckInput(env *Env, mode Mode) (*audit.InputReport, error) {
	var seatsPath = env.Paths.Seats
	if mode == Add {
		seatsPath = env.Paths.UnmatchedSeats
	}
	var apps, err = records.Read[records.Application](env.Fs, env.Paths.Input)
	if err != nil {
		return nil, errors.WithMessage(err, "reading applications")
	}
	seats, err := records.Read[records.Seat](env.Fs, seatsPath)
	if err != nil {
		return nil, errors.WithMessage(err, "reading seats")
	}
	var report = audit.CheckInput(apps, records.UnwrapSeats(seats), env.Config)

	if mode == Add {
		published, err := records.Read[records.Placement](env.Fs, env.Paths.SeatResult)
		if err != nil {
			return nil, errors.WithMessage(err, "reading published seat result")
		}
		report.Applicants = len(allocator.Unassigned(records.Applicants(apps), records.UnwrapPlacements(published)))
	}
	return report, nil
}
