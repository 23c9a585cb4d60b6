package probe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/eddielth/check-sensorprobe/logger"
)

// Limit is an optional threshold.
type Limit struct {
	Value float64
	Set   bool
}

// Float returns the threshold and whether it was reported.
func (l Limit) Float() (float64, bool) {
	return l.Value, l.Set
}

// Ptr returns nil for an unset limit.
func (l Limit) Ptr() *float64 {
	if !l.Set {
		return nil
	}
	v := l.Value
	return &v
}

func (l Limit) String() string {
	if !l.Set {
		return ""
	}
	return FormatNumber(l.Value)
}

// MarshalJSON encodes an unset limit as null.
func (l Limit) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Ptr())
}

// Reading is the measured part of a sensor. State-only sensors have none.
type Reading struct {
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	LowCritical  Limit   `json:"low_critical"`
	LowWarning   Limit   `json:"low_warning"`
	HighWarning  Limit   `json:"high_warning"`
	HighCritical Limit   `json:"high_critical"`

	scaled bool
}

func (r *Reading) limits() []*Limit {
	return []*Limit{&r.LowCritical, &r.LowWarning, &r.HighWarning, &r.HighCritical}
}

// Sensor is a validated bundle.
type Sensor struct {
	Key      SensorKey `json:"key"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Health   int       `json:"health"`
	Severity Severity  `json:"severity"`
	Reading  *Reading  `json:"reading,omitempty"`
}

// Sensor converts the bundle into a typed sensor. Bundles without a
// health code or name are rejected. Numeric fields that do not parse are
// dropped and logged; the sensor keeps its health code.
func (b *Bundle) Sensor() (Sensor, error) {
	rawHealth, ok := b.Get(FieldHealth)
	if !ok {
		return Sensor{}, fmt.Errorf("sensor %s: missing %s", b.Key, FieldHealth)
	}
	name, ok := b.Get(FieldName)
	if !ok {
		return Sensor{}, fmt.Errorf("sensor %s: missing %s", b.Key, FieldName)
	}

	health, err := strconv.Atoi(strings.TrimSpace(rawHealth))
	if err != nil {
		return Sensor{}, fmt.Errorf("sensor %s: invalid %s %q: %w", b.Key, FieldHealth, rawHealth, err)
	}

	s := Sensor{
		Key:      b.Key,
		Name:     name,
		Category: b.Category,
		Health:   health,
	}

	rawValue, ok := b.Get(FieldValue)
	if !ok {
		return s, nil
	}

	value, err := parseNumber(rawValue)
	if err != nil {
		logger.Warn("sensor %q: ignoring %s %q: %v", name, FieldValue, rawValue, err)
		return s, nil
	}
	unit, _ := b.Get(FieldUnit)
	r := &Reading{Value: value, Unit: strings.TrimSpace(unit)}

	for kind, limit := range map[FieldKind]*Limit{
		FieldLowCritical:  &r.LowCritical,
		FieldLowWarning:   &r.LowWarning,
		FieldHighWarning:  &r.HighWarning,
		FieldHighCritical: &r.HighCritical,
	} {
		raw, ok := b.Get(kind)
		if !ok {
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			logger.Warn("sensor %q: ignoring %s %q: %v", name, kind, raw, err)
			continue
		}
		*limit = Limit{Value: v, Set: true}
	}

	s.Reading = r
	return s, nil
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// FormatNumber renders a value with the shortest exact representation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
