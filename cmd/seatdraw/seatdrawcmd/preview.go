package seatdrawcmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/records"
	"go.seatdraw.dev/core/report"
)

type cmdPreview struct {
	Out string `long:"out" description:"Path to which the preview is written. Stdout is used if empty"`
}

func init() {
	CommandRegistry.AddCommand("", "preview", "Preview the seat list and policy", `
Preview the seat list of --file.seats against the allocation policy: seat
counts by room and seat type for each seat status, rooms and seat types absent
from the policy vocabularies, duplicated seats, and the locker ranges of each
room with their capacities.
`, &cmdPreview{})
}

func (cmd *cmdPreview) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	rows, err := records.Read[records.Seat](env.Fs, env.Paths.Seats)
	if err != nil {
		return errors.WithMessage(err, "reading seats")
	}

	var w io.Writer = os.Stdout
	if cmd.Out != "" {
		var f, err = env.Fs.Create(cmd.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err = report.Preview(w, env.Config, records.UnwrapSeats(rows)); err != nil {
		return err
	}
	if cmd.Out != "" {
		log.WithField("path", cmd.Out).Info("wrote preview")
	}
	return nil
}
