package probe

import "fmt"

// Severity is the monitoring state. Its numeric value is the exit code.
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
	Unknown
)

var severityNames = [...]string{"OK", "WARNING", "CRITICAL", "UNKNOWN"}

func (s Severity) String() string {
	if s < OK || s > Unknown {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FromHealthCode maps a device health code. The second result is false
// when the code is not recognized; the severity is then Unknown.
func FromHealthCode(code int) (Severity, bool) {
	switch code {
	case 2:
		return OK, true
	case 3, 5:
		return Warning, true
	case 4, 6:
		return Critical, true
	default:
		return Unknown, false
	}
}

// Reduce folds next into the running overall severity. A per-sensor
// Unknown only counts when escalateUnknown is set.
func Reduce(current, next Severity, escalateUnknown bool) Severity {
	if next == Unknown && !escalateUnknown {
		return current
	}
	if next > current {
		return next
	}
	return current
}

// Tally accumulates per-sensor severities.
type Tally struct {
	overall         Severity
	escalateUnknown bool
	names           [Unknown + 1][]string
}

// NewTally creates an empty tally with overall severity OK.
func NewTally(escalateUnknown bool) *Tally {
	return &Tally{escalateUnknown: escalateUnknown}
}

// Add records one sensor's severity.
func (t *Tally) Add(name string, s Severity) {
	if s < OK || s > Unknown {
		s = Unknown
	}
	t.names[s] = append(t.names[s], name)
	t.overall = Reduce(t.overall, s, t.escalateUnknown)
}

// Overall returns the reduced severity.
func (t *Tally) Overall() Severity { return t.overall }

// Names returns the sensors recorded with s, in the order they were added.
func (t *Tally) Names(s Severity) []string {
	if s < OK || s > Unknown {
		return nil
	}
	return t.names[s]
}
