package report

import (
	"context"
	"io"
	"math"
	"runtime"
	"slices"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.seatdraw.dev/core/allocator"
	"golang.org/x/sync/errgroup"
)

// SimulateOptions parameterize Simulate.
type SimulateOptions struct {
	// Number of simulated runs.
	Runs int
	// Master seed, from which the seed of each run is derived.
	Seed uint64
	// Maximum number of concurrent runs. If zero, GOMAXPROCS is used.
	Workers int
}

// Vacancy summarizes the open seats of a Room left unfilled across runs.
type Vacancy struct {
	Room     string
	Mean     float64
	Min, Max int
	// Sample standard deviation, or zero if there was a single run.
	Stdev float64
}

// Simulation is the outcome of Simulate.
type Simulation struct {
	Runs int
	// Rooms having open seats, ordered by room.
	Rooms []Vacancy
	// Mean number of unfilled seats, and unassigned applicants, of a run.
	TotalMean      float64
	UnassignedMean float64
}

// Simulate runs all |phases| of |policy| against |applicants| and |seats|
// opts.Runs times, each with a distinct seed drawn from opts.Seed, and
// summarizes the vacancies of each room. Runs execute concurrently, and the
// Simulation is a function of opts.Seed alone: it doesn't vary with
// opts.Workers or scheduling order.
func Simulate(ctx context.Context, policy allocator.Policy, phases []allocator.Phase,
	applicants []allocator.Applicant, seats []allocator.Seat, opts SimulateOptions) (*Simulation, error) {

	if opts.Runs < 1 {
		return nil, errors.Errorf("expected runs >= 1 (got %d)", opts.Runs)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	// Validate inputs once, rather than within every run.
	if _, err := allocator.NewApplicantPool(applicants); err != nil {
		return nil, err
	} else if _, err = allocator.NewSeatPool(seats); err != nil {
		return nil, err
	}
	for i, p := range phases {
		if err := p.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "phases[%d]", i)
		}
	}

	var rooms []string
	for _, s := range seats {
		if s.IsOpen() && !slices.Contains(rooms, s.Room) {
			rooms = append(rooms, s.Room)
		}
	}
	slices.Sort(rooms)

	// Seeds are drawn up front, so that run N always has the same seed.
	var master = allocator.NewRand(opts.Seed)
	var seeds = make([]uint64, opts.Runs)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	var vacant = make([][]int, opts.Runs)
	var unassigned = make([]int, opts.Runs)

	var eg, egCtx = errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)

	for i := range seeds {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			var result, err = simulateOne(seeds[i], policy, phases, applicants, seats)
			if err != nil {
				return errors.WithMessagef(err, "run %d", i)
			}
			vacant[i] = roomVacancies(rooms, result.Unfilled)
			unassigned[i] = len(result.Unassigned)

			log.WithFields(log.Fields{
				"run":        i,
				"seed":       seeds[i],
				"unfilled":   len(result.Unfilled),
				"unassigned": len(result.Unassigned),
			}).Debug("simulated allocation")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return summarize(rooms, vacant, unassigned), nil
}

func simulateOne(seed uint64, policy allocator.Policy, phases []allocator.Phase,
	applicants []allocator.Applicant, seats []allocator.Seat) (*allocator.Result, error) {

	var ap, err = allocator.NewApplicantPool(applicants)
	if err != nil {
		return nil, err
	}
	sp, err := allocator.NewSeatPool(seats)
	if err != nil {
		return nil, err
	}
	var a = &allocator.Allocator{Policy: policy, Rand: allocator.NewRand(seed)}
	return a.Run(ap, sp, phases)
}

// roomVacancies counts |unfilled| seats of each of |rooms|.
func roomVacancies(rooms []string, unfilled []allocator.Seat) []int {
	var out = make([]int, len(rooms))
	for _, s := range unfilled {
		if i, ok := slices.BinarySearch(rooms, s.Room); ok {
			out[i]++
		}
	}
	return out
}

func summarize(rooms []string, vacant [][]int, unassigned []int) *Simulation {
	var out = &Simulation{Runs: len(vacant)}

	for r, room := range rooms {
		var samples = make([]int, len(vacant))
		for i := range vacant {
			samples[i] = vacant[i][r]
		}
		var mean, stdev = moments(samples)
		out.Rooms = append(out.Rooms, Vacancy{
			Room:  room,
			Mean:  mean,
			Min:   slices.Min(samples),
			Max:   slices.Max(samples),
			Stdev: stdev,
		})
	}

	var totals = make([]int, len(vacant))
	for i := range vacant {
		for _, n := range vacant[i] {
			totals[i] += n
		}
	}
	out.TotalMean, _ = moments(totals)
	out.UnassignedMean, _ = moments(unassigned)

	return out
}

// moments returns the mean and sample standard deviation of |samples|.
func moments(samples []int) (mean, stdev float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	for _, s := range samples {
		mean += float64(s)
	}
	mean /= float64(len(samples))

	if len(samples) == 1 {
		return mean, 0
	}
	var ss float64
	for _, s := range samples {
		ss += (float64(s) - mean) * (float64(s) - mean)
	}
	return mean, math.Sqrt(ss / float64(len(samples)-1))
}

// RenderSimulation renders |s| to |w|.
func RenderSimulation(w io.Writer, s *Simulation) error {
	var rows [][]string
	for _, v := range s.Rooms {
		rows = append(rows, []string{v.Room, float(v.Mean), itoa(v.Min), itoa(v.Max), float(v.Stdev)})
	}
	if err := heading(w, "vacancies over %s runs", count(s.Runs)); err != nil {
		return err
	}
	return table(w, []string{"Room", "Mean", "Min", "Max", "Stdev"}, rows,
		[]string{"Total", float(s.TotalMean), "", "", "unassigned " + float(s.UnassignedMean)})
}
