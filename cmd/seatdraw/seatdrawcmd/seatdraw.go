// Package seatdrawcmd implements the sub-commands of the seatdraw tool.
package seatdrawcmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.seatdraw.dev/core/archive"
	"go.seatdraw.dev/core/config"
	mbp "go.seatdraw.dev/core/mainboilerplate"
	"go.seatdraw.dev/core/pipeline"
)

const iniFilename = "seatdraw.ini"

var (
	baseCfg = new(struct {
		Policy  string            `long:"config" env:"SEATDRAW_CONFIG" default:"config.yaml" description:"Allocation policy file"`
		Files   pipeline.Paths    `group:"Files" namespace:"file" env-namespace:"FILE"`
		Archive archive.Config    `group:"Archive" namespace:"archive" env-namespace:"ARCHIVE"`
		Log     mbp.LogConfig     `group:"Logging" namespace:"log" env-namespace:"LOG"`
		Metrics mbp.MetricsConfig `group:"Metrics" namespace:"metrics" env-namespace:"METRICS"`
	})

	// CommandRegistry of seatdraw sub-commands, populated by init().
	CommandRegistry = mbp.NewCommandRegistry()
)

// modeConfig is common configuration of commands which run in a Mode.
type modeConfig struct {
	Mode string `long:"mode" default:"normal" choice:"normal" choice:"add" description:"Run mode. Add runs place only applicants absent from published results"`
}

// expectConfig is common configuration of commands which allocate seats.
type expectConfig struct {
	Expected int `long:"expected" default:"-1" description:"Expected number of additional applicants of an add run. The run fails if another number is found. Not checked if negative"`
}

func (cfg expectConfig) expected() *int {
	if cfg.Expected < 0 {
		return nil
	}
	return &cfg.Expected
}

func startup() {
	mbp.InitLog(baseCfg.Log)
	log.WithFields(log.Fields{
		"version":   mbp.Version,
		"buildDate": mbp.BuildDate,
	}).Debug("seatdraw starting")
}

// finish writes metrics, if configured.
func finish() {
	if err := mbp.WriteMetrics(baseCfg.Metrics); err != nil {
		log.WithField("err", err).Warn("failed to write metrics")
	}
}

// interruptible returns a Context which is cancelled upon SIGINT or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newEnv returns the pipeline.Env of the process configuration, and a
// function which releases it.
func newEnv(ctx context.Context) (*pipeline.Env, func(), error) {
	var fs = afero.NewOsFs()
	var cfg, err = config.Load(fs, baseCfg.Policy)
	if err != nil {
		return nil, nil, err
	}
	var env = &pipeline.Env{Fs: fs, Paths: baseCfg.Files, Config: cfg}

	if baseCfg.Archive.DSN == "" {
		return env, func() {}, nil
	}
	if env.Archive, err = archive.Open(baseCfg.Archive.DSN); err != nil {
		return nil, nil, err
	} else if err = env.Archive.Init(ctx); err != nil {
		_ = env.Archive.Close()
		return nil, nil, errors.WithMessage(err, "initializing archive")
	}
	return env, func() { _ = env.Archive.Close() }, nil
}

// Execute parses the process configuration and runs the selected command.
func Execute() {
	var parser = flags.NewParser(baseCfg, flags.Default)

	mbp.AddPrintConfigCmd(parser, iniFilename)
	parser.LongDescription = `seatdraw allocates reading-room seats, and then lockers, to applicants.

	See --help pages of each sub-command for documentation and usage examples.
	Optionally configure seatdraw with a '` + iniFilename + `' file in the current working directory,
	or with '~/.config/seatdraw/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
	the tool's current configuration.
	`
	mbp.Must(CommandRegistry.AddCommands("", parser.Command, true), "could not add subcommand")
	mbp.MustParseConfig(parser, iniFilename)
}
