package seatdrawcmd

import (
	"github.com/pkg/errors"
	"go.seatdraw.dev/core/pipeline"
)

type cmdLockers struct {
	modeConfig
}

func init() {
	CommandRegistry.AddCommand("", "lockers", "Issue lockers to seated applicants", `
Issue lockers to seated applicants from the configured locker ranges of their
rooms. Rooms having multiple ranges overflow from each range into the next.

A normal run issues lockers to all placements of the seat result. An add run
issues lockers to placements of the additional seat result only, continuing
each range after the lockers of the published locker result.
`, &cmdLockers{})
}

func (cmd *cmdLockers) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err = pipeline.Lockers(ctx, env, pipeline.Mode(cmd.Mode)); err != nil {
		return errors.WithMessage(err, "issuing lockers")
	}
	return nil
}
