// Package locker assigns lockers to placed applicants. Each room maps to an
// ordered list of numbered locker Ranges: lockers of a Range are issued in
// ascending order, and once a Range is exhausted its room overflows into the
// next Range. An incremental run resumes from the lockers already issued.
package locker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lockersIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatdraw_lockers_issued_total",
		Help: "Cumulative number of issued lockers.",
	})
	lockerShortfallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatdraw_locker_shortfalls_total",
		Help: "Cumulative number of placements which could not be issued a locker, by room.",
	}, []string{"room"})
)
