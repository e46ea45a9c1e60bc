// Package sample synthesizes application files for rehearsing allocation
// runs against a real seat list and policy.
package sample

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/pkg/errors"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/config"
	"go.seatdraw.dev/core/records"
)

// Weights of an open seat toward its room, when drawing the preferences of
// an applicant whose preferred seat type does or doesn't match the seat.
const (
	MatchedWeight = 1.0
	OtherWeight   = 0.3
)

// ClassCount is a number of applicants of a class.
type ClassCount struct {
	Class string
	Count int
}

// ParseCounts parses "class=N" arguments.
func ParseCounts(args []string) ([]ClassCount, error) {
	var out []ClassCount
	for _, arg := range args {
		var class, n, ok = strings.Cut(arg, "=")
		if !ok {
			return nil, errors.Errorf("malformed count %q (expected class=N)", arg)
		}
		var count, err = strconv.Atoi(n)
		if err != nil || count < 0 {
			return nil, errors.Errorf("malformed count %q (expected class=N)", arg)
		}
		out = append(out, ClassCount{Class: class, Count: count})
	}
	return out, nil
}

// Generate returns shuffled synthetic Applications of |counts|. Each applicant
// draws three distinct preferred rooms without replacement, weighted by the
// open |seats| of each room, such that rooms with more seats of the class's
// preferred type are more popular. Once weighted rooms are exhausted, the
// remaining preferences are drawn uniformly from other valid rooms.
func Generate(rng *rand.Rand, cfg *config.Config, seats []allocator.Seat, counts []ClassCount) ([]records.Application, error) {
	if len(cfg.ValidRooms) < allocator.NumPreferences {
		return nil, errors.Errorf("expected at least %d valid rooms (have %d)", allocator.NumPreferences, len(cfg.ValidRooms))
	}
	var policy = cfg.Policy()
	var base = time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
	var out []records.Application

	for _, cc := range counts {
		if !cfg.IsClass(cc.Class) {
			return nil, errors.Errorf("unknown class %q", cc.Class)
		}
		var weights = roomWeights(cfg.ValidRooms, seats, policy.PreferredSeatType(cc.Class))

		for i := 0; i != cc.Count; i++ {
			var seq = len(out)
			var name = petname.Generate(2, "-")

			out = append(out, records.Application{
				Timestamp: base.Add(time.Duration(seq) * time.Minute).Format("2006/01/02 15:04:05"),
				Email:     fmt.Sprintf("%s.%d@example.com", name, seq),
				Applicant: allocator.Applicant{
					Key:         allocator.ApplicantKey{Name: name, ID: fmt.Sprintf("S%07d", seq+1)},
					Class:       cc.Class,
					Preferences: drawPreferences(rng, cfg.ValidRooms, weights),
				},
			})
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func roomWeights(rooms []string, seats []allocator.Seat, preferred string) []float64 {
	var index = make(map[string]int, len(rooms))
	for i, r := range rooms {
		index[r] = i
	}
	var out = make([]float64, len(rooms))
	for _, s := range seats {
		var i, ok = index[s.Room]
		if !ok || !s.IsOpen() {
			continue
		} else if s.Type == preferred {
			out[i] += MatchedWeight
		} else {
			out[i] += OtherWeight
		}
	}
	return out
}

func drawPreferences(rng *rand.Rand, rooms []string, weights []float64) [allocator.NumPreferences]string {
	var w = append([]float64(nil), weights...)
	var taken = make([]bool, len(rooms))
	var out [allocator.NumPreferences]string

	for p := range out {
		var total float64
		for i := range w {
			if !taken[i] {
				total += w[i]
			}
		}

		var pick = -1
		if total > 0 {
			var x = rng.Float64() * total
			for i := range w {
				if taken[i] || w[i] == 0 {
					continue
				}
				pick = i
				if x -= w[i]; x < 0 {
					break
				}
			}
		} else {
			var free []int
			for i := range rooms {
				if !taken[i] {
					free = append(free, i)
				}
			}
			pick = free[rng.IntN(len(free))]
		}
		taken[pick] = true
		out[p] = rooms[pick]
	}
	return out
}
