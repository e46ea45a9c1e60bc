package seatdrawcmd

import (
	"os"

	"go.seatdraw.dev/core/pipeline"
	"go.seatdraw.dev/core/report"
)

type cmdCheck struct {
	modeConfig
}

func init() {
	CommandRegistry.AddCommand("", "check", "Audit applications", `
Audit the applications of --file.input for duplicated emails, ids, and
pseudonyms, for classes and preferred rooms outside the configured
vocabularies, and for fewer open seats than applicants. Invalid values are an
error; other findings are warnings.
`, &cmdCheck{})
}

func (cmd *cmdCheck) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	r, err := pipeline.CheckInput(env, pipeline.Mode(cmd.Mode))
	if err != nil {
		return err
	} else if err = report.RenderInput(os.Stdout, r); err != nil {
		return err
	}
	return r.Err()
}
