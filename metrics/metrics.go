// Package metrics declares collectors of seatdraw pipeline steps. Collectors
// of the allocation engines are declared by their own packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Keys for seatdraw metrics.
const (
	Fail = "fail"
	Ok   = "ok"
)

// Collectors of pipeline steps.
var (
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatdraw_steps_total",
		Help: "Cumulative number of pipeline steps, by step, mode, and status.",
	}, []string{"step", "mode", "status"})
	RowsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatdraw_rows_written_total",
		Help: "Cumulative number of rows written to output files, by file name.",
	}, []string{"file"})
)

// Status returns the status key of |err|.
func Status(err error) string {
	if err != nil {
		return Fail
	}
	return Ok
}
