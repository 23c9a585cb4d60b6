package probe

import (
	"fmt"
	"strings"
)

// PluginName prefixes every status line.
const PluginName = "sensorProbe2plus"

// StatusLine formats "<SEVERITY> sensorProbe2plus: <message>".
func StatusLine(s Severity, message string) string {
	return fmt.Sprintf("%s %s: %s", s, PluginName, message)
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func stateGroup(s Severity, names []string) string {
	return fmt.Sprintf("state %s for %d sensor%s (%s)", s, len(names), plural(len(names)), strings.Join(names, ", "))
}

// Summary builds the one-line verdict from the warning and critical buckets.
// When unknown sensors escalate the overall state, they lead the line.
func Summary(t *Tally) string {
	warning := t.Names(Warning)
	critical := t.Names(Critical)

	if t.Overall() == Unknown {
		groups := []string{stateGroup(Unknown, t.Names(Unknown))}
		if len(critical) > 0 {
			groups = append(groups, stateGroup(Critical, critical))
		}
		if len(warning) > 0 {
			groups = append(groups, stateGroup(Warning, warning))
		}
		return StatusLine(Unknown, "Sensor reports "+strings.Join(groups, " and "))
	}

	switch {
	case len(warning) > 0 && len(critical) > 0:
		return StatusLine(Critical, "Sensor reports "+stateGroup(Critical, critical)+" and "+stateGroup(Warning, warning))
	case len(warning) > 0:
		return StatusLine(Warning, "Sensor reports "+stateGroup(Warning, warning))
	case len(critical) > 0:
		return StatusLine(Critical, "Sensor reports "+stateGroup(Critical, critical))
	default:
		return StatusLine(OK, "Sensor reports that everything is fine")
	}
}

// PerfToken renders one sensor's performance data.
func PerfToken(s Sensor) string {
	r := s.Reading
	if r == nil {
		state := 1
		if s.Severity == OK {
			state = 0
		}
		return fmt.Sprintf("'%s'=%d;", s.Name, state)
	}

	return fmt.Sprintf("'%s'=%s%s;%s:%s;%s:%s",
		s.Name, FormatNumber(r.Value), r.Unit,
		r.LowWarning, r.HighWarning, r.LowCritical, r.HighCritical)
}

// PerfData joins the tokens of all sensors.
func PerfData(sensors []Sensor) string {
	tokens := make([]string, 0, len(sensors))
	for _, s := range sensors {
		tokens = append(tokens, PerfToken(s))
	}
	return strings.Join(tokens, " ")
}

// DetailLine renders one sensor for verbose output. Thresholds are
// appended at verbosity 2.
func DetailLine(s Sensor, verbosity int) string {
	line := fmt.Sprintf("%s %s sensor \"%s\"", s.Severity, s.Category, s.Name)
	r := s.Reading
	if r == nil {
		return line
	}

	line += fmt.Sprintf(": %s%s", FormatNumber(r.Value), r.Unit)
	if verbosity >= 2 {
		line += fmt.Sprintf(" (%s:%s/%s:%s)", r.LowWarning, r.HighWarning, r.LowCritical, r.HighCritical)
	}
	return line
}
