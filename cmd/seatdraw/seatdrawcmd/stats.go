package seatdrawcmd

import (
	"os"

	"github.com/pkg/errors"
	"go.seatdraw.dev/core/records"
	"go.seatdraw.dev/core/report"
)

type cmdStats struct {
	All bool `long:"all" description:"Show every room and group, rather than only contested ones"`
}

func init() {
	CommandRegistry.AddCommand("", "stats", "Report preference satisfaction", `
Report, for each room and configured stats group, the number of applicants
naming the room as their first choice, and the number of its winners by the
rank they gave it.

By default only contested rooms are shown: those which turned away
first-choice applicants, yet were won by applicants ranking them lower.
`, &cmdStats{})
}

func (cmd *cmdStats) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	apps, err := records.Read[records.Application](env.Fs, env.Paths.Input)
	if err != nil {
		return errors.WithMessage(err, "reading applications")
	}
	placements, err := records.Read[records.Placement](env.Fs, env.Paths.SeatResult)
	if err != nil {
		return errors.WithMessage(err, "reading seat result")
	}
	var s = report.ComputeStats(env.Config.Groups(), records.Applicants(apps), records.UnwrapPlacements(placements))
	return report.RenderStats(os.Stdout, s, cmd.All)
}
