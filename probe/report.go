package probe

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/validator"
)

// MaxVerbosity is the highest verbosity level that changes the output.
const MaxVerbosity = 2

// Version is printed by -V.
const Version = "1.0"

// VersionString is the full -V output.
var VersionString = "AKCP SensorProbe2+ Version " + Version

var (
	thresholdOrder = &validator.OrderValidator{
		Fields: []string{"LowCritical", "LowWarning", "HighWarning", "HighCritical"},
	}
	humidityRange = &validator.RangeValidator{Field: "Value", Min: 0, Max: 100}
)

// Options controls evaluation of one query's records.
type Options struct {
	Filter          Filter
	Verbosity       int
	EscalateUnknown bool
}

// Report is the outcome of one check run.
type Report struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
	PerfData string   `json:"perfdata,omitempty"`
	Details  []string `json:"details,omitempty"`
	Sensors  []Sensor `json:"sensors,omitempty"`
}

// Failure builds a report for a run that produced no sensor data.
func Failure(s Severity, format string, args ...interface{}) *Report {
	return &Report{
		Severity: s,
		Summary:  StatusLine(s, fmt.Sprintf(format, args...)),
	}
}

// NoSensors is the report for an empty result after filtering.
func NoSensors() *Report {
	return Failure(Unknown, "There is no sensor on the given port")
}

// ExitCode returns the process exit status for the report.
func (r *Report) ExitCode() int {
	if r.Severity < OK || r.Severity > Unknown {
		return int(Unknown)
	}
	return int(r.Severity)
}

// String renders the plugin output: summary, perfdata and detail lines.
func (r *Report) String() string {
	var b strings.Builder
	b.WriteString(r.Summary)
	if len(r.Sensors) > 0 {
		b.WriteString("|")
		b.WriteString(r.PerfData)
	}
	b.WriteString("\n")
	for _, line := range r.Details {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// WriteTo writes the rendered report.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

// Evaluate turns the records of one query into a report.
func Evaluate(records []RawRecord, opts Options) *Report {
	verbosity := opts.Verbosity
	if verbosity > MaxVerbosity {
		verbosity = MaxVerbosity
	}

	bundles, err := Assemble(records, opts.Filter)
	if err != nil {
		if errors.Is(err, ErrNoSensors) {
			logger.Info("no sensor records among %d records (port filter %d)", len(records), opts.Filter.Port)
		}
		return NoSensors()
	}

	tally := NewTally(opts.EscalateUnknown)
	sensors := make([]Sensor, 0, len(bundles))
	for _, b := range bundles {
		s, err := b.Sensor()
		if err != nil {
			logger.Warn("skipping malformed sensor: %v", err)
			continue
		}

		sev, known := FromHealthCode(s.Health)
		if !known {
			logger.Warn("sensor %q reports unrecognized health code %d", s.Name, s.Health)
		}
		s.Severity = sev

		Normalize(s.Reading)
		checkReading(s)

		tally.Add(s.Name, sev)
		sensors = append(sensors, s)
	}

	if len(sensors) == 0 {
		return NoSensors()
	}

	report := &Report{
		Severity: tally.Overall(),
		Summary:  Summary(tally),
		PerfData: PerfData(sensors),
		Sensors:  sensors,
	}
	if verbosity > 0 {
		for _, s := range sensors {
			report.Details = append(report.Details, DetailLine(s, verbosity))
		}
	}

	logger.Debug("evaluated %d sensors from %d records, overall %s", len(sensors), len(records), report.Severity)
	return report
}

// checkReading logs threshold and range anomalies. They never drop the sensor.
func checkReading(s Sensor) {
	if s.Reading == nil {
		return
	}
	if err := thresholdOrder.Validate(s.Reading); err != nil {
		logger.Warn("sensor %q has inconsistent thresholds: %v", s.Name, err)
	}
	if s.Reading.Unit == "%" {
		if err := humidityRange.Validate(s.Reading); err != nil {
			logger.Warn("sensor %q: %v", s.Name, err)
		}
	}
}
