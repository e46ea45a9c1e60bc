package seatdrawcmd

import (
	"go.seatdraw.dev/core/pipeline"
)

type cmdRun struct {
	modeConfig
	expectConfig
}

func init() {
	CommandRegistry.AddCommand("", "run", "Run the full allocation pipeline", `
Run the full allocation pipeline: fingerprint and audit the applications,
allocate seats and then lockers, and fingerprint the applications and the
locker result once more. Invalid application values fail the run before
anything is written.

See "seats" and "lockers" for the behavior of --mode and --expected.
`, &cmdRun{})
}

func (cmd *cmdRun) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = pipeline.Run(ctx, env, pipeline.Mode(cmd.Mode), cmd.expected())
	return err
}
