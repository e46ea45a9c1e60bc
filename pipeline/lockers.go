package pipeline

import (
	"bytes"
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/archive"
	"go.seatdraw.dev/core/audit"
	"go.seatdraw.dev/core/locker"
	"go.seatdraw.dev/core/metrics"
	"go.seatdraw.dev/core/records"
)

// LockersOutcome is the outcome of Lockers.
type LockersOutcome struct {
	Mode    Mode
	Seed    uint64
	Outcome *locker.Outcome
	// Usage of each locker Range after the run.
	Usage []locker.RangeUsage
}

// Lockers issues lockers to seat placements under |mode|.
//
// A Normal run issues lockers to all placements of Paths.SeatResult using an
// ambient seed, and writes Paths.LockerResult.
//
// An Add run issues lockers to placements of Paths.SeatResultAdditional,
// using a seed derived from its bytes. Range cursors first resume past the
// lockers of Paths.LockerResult which, if missing, is treated as empty. The
// issued lockers are written to Paths.LockerResultAdditional and appended to
// Paths.LockerResult.
//
// Workbook copies at Paths.LockerSheet and Paths.LockerSheetAdditional are
// written or appended alongside. Failure to write a copy is logged and does
// not fail the run, as the CSV result is already published.
//
// Either mode records the run to the Env's Archive before writing outputs.
func Lockers(ctx context.Context, env *Env, mode Mode) (*LockersOutcome, error) {
	var out, err = lockers(ctx, env, mode)
	metrics.StepsTotal.WithLabelValues("lockers", string(mode), metrics.Status(err)).Inc()
	return out, err
}

func lockers(ctx context.Context, env *Env, mode Mode) (*LockersOutcome, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	var path = env.Paths.SeatResult
	if mode == Add {
		path = env.Paths.SeatResultAdditional
	}

	var content, err = afero.ReadFile(env.Fs, path)
	if err != nil {
		return nil, errors.WithMessage(err, "reading seat result")
	}
	rows, err := records.Decode[records.Placement](bytes.NewReader(content))
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	var placements = records.UnwrapPlacements(rows)
	var alloc = locker.New(env.Config.Lockers)
	var out = &LockersOutcome{Mode: mode}

	if mode == Add {
		if err = resume(env, alloc); err != nil {
			return nil, err
		}
		out.Seed = allocator.SeedFromBytes(content)
	} else {
		out.Seed = allocator.AmbientSeed()
	}
	log.WithFields(log.Fields{"mode": mode, "seed": out.Seed}).Debug("seeded locker allocation")

	out.Outcome = alloc.Distribute(allocator.NewRand(out.Seed), placements)
	out.Usage = alloc.Usage()
	logLockersOutcome(out)

	if err = env.record(func(s *archive.Store) error {
		var run = archive.NewRun("lockers", string(mode), out.Seed, audit.HashBytes(content))
		run.Shortfall = out.Outcome.Shortfall()
		return s.RecordLockers(ctx, run, out.Outcome.Assigned)
	}); err != nil {
		return nil, err
	}

	var issued = records.WrapLockers(out.Outcome.Assigned)
	if mode == Normal {
		err = write(env.Fs, env.Paths.LockerResult, records.LockerHeader, issued, records.Truncate)
	} else if err = write(env.Fs, env.Paths.LockerResultAdditional, records.LockerHeader, issued, records.Truncate); err == nil {
		err = write(env.Fs, env.Paths.LockerResult, records.LockerHeader, issued, records.Append)
	}
	if err != nil {
		return nil, err
	}

	if mode == Normal {
		writeSheet(env.Fs, env.Paths.LockerSheet, issued, records.Truncate)
	} else {
		writeSheet(env.Fs, env.Paths.LockerSheet, issued, records.Append)
		writeSheet(env.Fs, env.Paths.LockerSheetAdditional, issued, records.Truncate)
	}
	return out, nil
}

// writeSheet writes a workbook copy of |issued| to |path|, if it's set.
func writeSheet(fs afero.Fs, path string, issued []records.Locker, mode records.Mode) {
	if path == "" {
		return
	} else if err := records.WriteSheet(fs, path, records.LockerHeader, issued, mode); err != nil {
		log.WithFields(log.Fields{"path": path, "err": err}).
			Warn("failed to write workbook copy of locker result (CSV result is unaffected)")
		return
	}
	logWrote(path, len(issued))
}

// resume advances the cursors of |alloc| past previously issued lockers.
func resume(env *Env, alloc *locker.Allocator) error {
	var prior, err = records.Read[records.Locker](env.Fs, env.Paths.LockerResult)
	if os.IsNotExist(err) {
		log.WithField("path", env.Paths.LockerResult).
			Warn("no prior locker result; issuing from the start of each range")
		return nil
	} else if err != nil {
		return errors.WithMessage(err, "reading prior locker result")
	}

	if n := alloc.Resume(records.IssuedLockers(prior)); n != 0 {
		log.WithFields(log.Fields{
			"path":      env.Paths.LockerResult,
			"unmatched": n,
		}).Warn("prior lockers fall within no configured range")
	}
	log.WithField("prior", len(prior)).Info("resumed locker cursors")
	return nil
}

func logLockersOutcome(out *LockersOutcome) {
	log.WithFields(log.Fields{
		"mode":     out.Mode,
		"assigned": len(out.Outcome.Assigned),
		"failed":   out.Outcome.Shortfall(),
	}).Info("issued lockers")

	for _, f := range out.Outcome.Failed {
		log.WithFields(log.Fields{"room": f.Room, "count": f.Count}).Warn("room ran out of lockers")
	}
	for _, u := range out.Usage {
		log.WithFields(log.Fields{
			"room":      u.Room,
			"range":     u.Range.String(),
			"issued":    u.Issued,
			"remaining": u.Remaining,
		}).Info("locker range usage")
	}
}
