package mainboilerplate

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// MetricsConfig configures the export of process metrics. Commands run to
// completion rather than serving, so metrics are written once as they exit.
type MetricsConfig struct {
	Textfile string `long:"textfile" env:"TEXTFILE" description:"Path to which metrics are written in text exposition format upon completion, as for a node-exporter textfile collector. Metrics are not written if empty"`
}

// WriteMetrics writes metrics of the default registry to the Textfile of
// |cfg|, if set.
func WriteMetrics(cfg MetricsConfig) error {
	return writeMetrics(cfg, prometheus.DefaultGatherer)
}

func writeMetrics(cfg MetricsConfig, g prometheus.Gatherer) error {
	if cfg.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(cfg.Textfile, g); err != nil {
		return errors.WithMessage(err, "writing metrics")
	}
	log.WithField("path", cfg.Textfile).Debug("wrote metrics")
	return nil
}
