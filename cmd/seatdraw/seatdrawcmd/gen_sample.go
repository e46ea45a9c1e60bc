package seatdrawcmd

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/records"
	"go.seatdraw.dev/core/sample"
)

type cmdGenSample struct {
	Counts []string `long:"count" required:"true" description:"Number of applicants of a class, as class=N. May be repeated"`
	Seed   uint64   `long:"seed" description:"Seed of preference draws. A random seed is used if zero"`
	Out    string   `long:"out" default:"input/sample_input_data.csv" description:"Path of the generated application file"`
}

func init() {
	CommandRegistry.AddCommand("", "gen-sample", "Generate synthetic applications", `
Generate a synthetic application file for rehearsing allocation runs against
the seat list of --file.seats. Each applicant ranks three distinct rooms,
favoring rooms having more open seats of the applicant's preferred seat type.

>    seatdraw gen-sample --count freshman=120 --count senior=40 --seed 7
`, &cmdGenSample{})
}

func (cmd *cmdGenSample) Execute([]string) error {
	startup()
	defer finish()

	var ctx, cancel = interruptible()
	defer cancel()

	var env, release, err = newEnv(ctx)
	if err != nil {
		return err
	}
	defer release()

	counts, err := sample.ParseCounts(cmd.Counts)
	if err != nil {
		return err
	}
	seats, err := records.Read[records.Seat](env.Fs, env.Paths.Seats)
	if err != nil {
		return errors.WithMessage(err, "reading seats")
	}

	var seed = cmd.Seed
	if seed == 0 {
		seed = allocator.AmbientSeed()
	}
	apps, err := sample.Generate(allocator.NewRand(seed), env.Config, records.UnwrapSeats(seats), counts)
	if err != nil {
		return err
	}
	if err = records.Write(env.Fs, cmd.Out, records.ApplicationHeader, apps, records.Truncate); err != nil {
		return errors.WithMessagef(err, "writing %s", cmd.Out)
	}

	log.WithFields(log.Fields{
		"path":       cmd.Out,
		"applicants": len(apps),
		"seed":       seed,
	}).Info("wrote sample applications")
	return nil
}
