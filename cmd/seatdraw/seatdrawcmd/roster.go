package seatdrawcmd

import (
	"os"

	"github.com/pkg/errors"
	"go.seatdraw.dev/core/audit"
	"go.seatdraw.dev/core/records"
	"go.seatdraw.dev/core/report"
)

type cmdRoster struct {
	Roster      string `long:"roster" default:"input/roster.csv" description:"Registry roster, having columns id, name, status, and class_code"`
	LeaveStatus string `long:"leave-status" default:"leave" description:"Roster status of students on leave"`
}

func init() {
	CommandRegistry.AddCommand("", "roster", "Cross-check applications against the registry roster", `
Cross-check the applications of --file.input against a registry roster, by
student id. Mismatched names and classes, students on leave, duplicated
names, and entries absent from either side are reported. Class codes of the
roster are mapped to classes through roster_class_codes of the policy.

Findings are advisory, and never fail the command.
`, &cmdRoster{})
}

func (cmd *cmdRoster) Execute([]string) error {
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
	roster, err := records.Read[records.Roster](env.Fs, cmd.Roster)
	if err != nil {
		return errors.WithMessage(err, "reading roster")
	}
	var r = audit.CompareRoster(roster, apps, env.Config.RosterClassCodes, cmd.LeaveStatus)
	return report.RenderRoster(os.Stdout, r)
}
