// Package check runs one query cycle against a sensor probe and turns the
// outcome, including transport failures, into a report.
package check

import (
	"context"
	"errors"

	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/probe"
	"github.com/eddielth/check-sensorprobe/snmp"
)

// Walker returns the raw records below a query root.
type Walker interface {
	Walk(ctx context.Context, root string) ([]probe.RawRecord, error)
}

// Run walks every root in order and evaluates the combined records.
// A transport failure ends the run without evaluating partial results.
func Run(ctx context.Context, w Walker, roots []string, opts probe.Options) *probe.Report {
	if len(roots) == 0 {
		roots = []string{probe.SensorRoot}
	}

	var records []probe.RawRecord
	for _, root := range roots {
		recs, err := w.Walk(ctx, root)
		if err != nil {
			return TransportFailure(err)
		}
		records = append(records, recs...)
	}

	return probe.Evaluate(records, opts)
}

// TransportFailure maps a query error: an agent error-status is CRITICAL,
// anything else (timeouts, unreachable host, decoding) is UNKNOWN.
func TransportFailure(err error) *probe.Report {
	var se *snmp.StatusError
	if errors.As(err, &se) {
		logger.Error("agent returned error status: %v", se)
		return probe.Failure(probe.Critical, "%s", se.Error())
	}

	logger.Error("query failed: %v", err)
	return probe.Failure(probe.Unknown, "%s", err.Error())
}
