// Package metrics writes check results in the Prometheus text format for
// the node exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/storage"
)

const metricPrefix = "sensorprobe_"

// Textfile is a storage.StorageBackend that rewrites one .prom file per run.
type Textfile struct {
	path string
}

// NewTextfile validates the target directory.
func NewTextfile(path string) (*Textfile, error) {
	if path == "" {
		return nil, fmt.Errorf("textfile path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create dir for %s: %w", path, err)
	}
	return &Textfile{path: path}, nil
}

// Store gathers the result into a fresh registry and writes it atomically.
func (t *Textfile) Store(res storage.Result) error {
	reg, err := Registry(res)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(t.path, reg); err != nil {
		return fmt.Errorf("write textfile %s: %w", t.path, err)
	}
	logger.Debug("wrote metrics textfile: %s", t.path)
	return nil
}

// Close implements storage.StorageBackend.
func (t *Textfile) Close() error { return nil }

// Registry builds a registry holding the gauges for one result.
func Registry(res storage.Result) (*prometheus.Registry, error) {
	if res.Report == nil {
		return nil, fmt.Errorf("result for %s has no report", res.Host)
	}

	checkState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "check_state",
			Help: "Overall check state (0=OK, 1=WARNING, 2=CRITICAL, 3=UNKNOWN)",
		},
		[]string{"host"},
	)
	checkTime := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "check_timestamp_seconds",
			Help: "Unix time of the last check run",
		},
		[]string{"host"},
	)
	sensorState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "sensor_state",
			Help: "Per sensor state (0=OK, 1=WARNING, 2=CRITICAL, 3=UNKNOWN)",
		},
		[]string{"host", "port", "slot", "name", "category"},
	)
	sensorValue := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "sensor_value",
			Help: "Normalized sensor reading",
		},
		[]string{"host", "port", "slot", "name", "category", "unit"},
	)

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{checkState, checkTime, sensorState, sensorValue} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	checkState.WithLabelValues(res.Host).Set(float64(res.Report.ExitCode()))
	checkTime.WithLabelValues(res.Host).Set(float64(res.CheckedAt.Unix()))

	for _, row := range res.Rows() {
		port := fmt.Sprintf("%d", row.Port+1)
		slot := fmt.Sprintf("%d", row.Slot)
		sensorState.WithLabelValues(res.Host, port, slot, row.Name, row.Category).Set(float64(row.State))
		if row.Value != nil {
			sensorValue.WithLabelValues(res.Host, port, slot, row.Name, row.Category, row.Unit).Set(*row.Value)
		}
	}

	return reg, nil
}
