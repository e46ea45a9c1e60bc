package seatdrawcmd

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/records"
	"go.seatdraw.dev/core/report"
)

type cmdSimulate struct {
	Runs    int    `long:"runs" default:"100" description:"Number of simulated allocations"`
	Seed    uint64 `long:"seed" description:"Master seed of the simulation. A random seed is used if zero"`
	Workers int    `long:"workers" description:"Maximum number of concurrent allocations. GOMAXPROCS is used if zero"`
}

func init() {
	CommandRegistry.AddCommand("", "simulate", "Simulate seat vacancies", `
Simulate repeated normal allocations of --file.input to --file.seats, each
under a distinct seed derived from --seed, and report the mean, minimum,
maximum, and standard deviation of each room's unfilled seats. Nothing is
written.

Results depend only on --seed, and not on --workers:

>    seatdraw simulate --runs 1000 --seed 42
`, &cmdSimulate{})
}

func (cmd *cmdSimulate) Execute([]string) error {
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
	seats, err := records.Read[records.Seat](env.Fs, env.Paths.Seats)
	if err != nil {
		return errors.WithMessage(err, "reading seats")
	}

	var seed = cmd.Seed
	if seed == 0 {
		seed = allocator.AmbientSeed()
	}
	log.WithField("seed", seed).Info("simulating allocations")

	s, err := report.Simulate(ctx, env.Config.Policy(), env.Config.Phases,
		records.Applicants(apps), records.UnwrapSeats(seats),
		report.SimulateOptions{Runs: cmd.Runs, Seed: seed, Workers: cmd.Workers})
	if err != nil {
		return err
	}
	return report.RenderSimulation(os.Stdout, s)
}
