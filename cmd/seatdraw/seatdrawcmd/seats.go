package seatdrawcmd

import (
	"github.com/pkg/errors"
	"go.seatdraw.dev/core/pipeline"
)

type cmdSeats struct {
	modeConfig
	expectConfig
}

func init() {
	CommandRegistry.AddCommand("", "seats", "Allocate seats to applicants", `
Allocate seats to applicants through the configured phases.

A normal run allocates all applications of --file.input to open seats of
--file.seats, and writes the seat result, unmatched applicants, and unmatched
seats. Its random seed is drawn from the environment.

An add run allocates only applications absent from the published seat result,
to the seats of the unmatched seat file, through the configured add-mode
phases. Its seed is derived from the bytes of --file.input, such that
re-running it over identical inputs produces identical results. Use --expected
to guard against unexpected additional applicants:

>    seatdraw seats --mode add --expected 12
`, &cmdSeats{})
}

func (cmd *cmdSeats) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err = pipeline.Seats(ctx, env, pipeline.Mode(cmd.Mode), cmd.expected()); err != nil {
		return errors.WithMessage(err, "allocating seats")
	}
	return nil
}
