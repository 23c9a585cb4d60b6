package probe

import "errors"

// ErrNoSensors is returned when no record survives classification.
var ErrNoSensors = errors.New("no sensor on the given port")

// Bundle collects the raw fields reported for one sensor.
type Bundle struct {
	Key      SensorKey
	Category string
	fields   map[FieldKind]string
}

// Get returns the raw value of a field.
func (b *Bundle) Get(kind FieldKind) (string, bool) {
	v, ok := b.fields[kind]
	return v, ok
}

// Assembler folds accepted records into per-sensor bundles.
type Assembler struct {
	filter  Filter
	bundles map[SensorKey]*Bundle
	order   []SensorKey
}

// NewAssembler creates an assembler applying the given filter.
func NewAssembler(filter Filter) *Assembler {
	return &Assembler{
		filter:  filter,
		bundles: make(map[SensorKey]*Bundle),
	}
}

// Add classifies a record and stores it. It reports whether the record was kept.
func (a *Assembler) Add(rec RawRecord) bool {
	c, ok := Classify(rec.Address, a.filter)
	if !ok {
		return false
	}

	b, exists := a.bundles[c.Key]
	if !exists {
		b = &Bundle{Key: c.Key, fields: make(map[FieldKind]string)}
		a.bundles[c.Key] = b
		a.order = append(a.order, c.Key)
	}

	// Last write wins for both the field and the category stamp.
	b.Category = c.Category
	b.fields[c.Kind] = rec.Value
	return true
}

// Bundles returns the bundles in the order their sensors were first seen.
func (a *Assembler) Bundles() []*Bundle {
	out := make([]*Bundle, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.bundles[key])
	}
	return out
}

// Assemble runs every record through a new assembler.
func Assemble(records []RawRecord, filter Filter) ([]*Bundle, error) {
	a := NewAssembler(filter)
	for _, rec := range records {
		a.Add(rec)
	}

	bundles := a.Bundles()
	if len(bundles) == 0 {
		return nil, ErrNoSensors
	}
	return bundles, nil
}
