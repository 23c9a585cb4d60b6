package probe

import "fmt"

// FieldKind is the column of a sensor table entry.
type FieldKind int

const (
	FieldName         FieldKind = 2
	FieldUnit         FieldKind = 5
	FieldHealth       FieldKind = 6
	FieldLowCritical  FieldKind = 9
	FieldLowWarning   FieldKind = 10
	FieldHighWarning  FieldKind = 11
	FieldHighCritical FieldKind = 12
	FieldValue        FieldKind = 20
)

var fieldNames = map[FieldKind]string{
	FieldName:         "name",
	FieldUnit:         "unit",
	FieldHealth:       "health",
	FieldLowCritical:  "low_critical",
	FieldLowWarning:   "low_warning",
	FieldHighWarning:  "high_warning",
	FieldHighCritical: "high_critical",
	FieldValue:        "value",
}

// Known reports whether k is a column the classifier keeps.
func (k FieldKind) Known() bool {
	_, ok := fieldNames[k]
	return ok
}

func (k FieldKind) String() string {
	if name, ok := fieldNames[k]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(k))
}

// Filter restricts which records are accepted.
type Filter struct {
	// Port is 1-based; 0 accepts every port.
	Port int
}

// Match reports whether a 0-based device port passes the filter.
func (f Filter) Match(port int) bool {
	return f.Port == 0 || f.Port-1 == port
}

// Classified is an accepted record's position.
type Classified struct {
	Key      SensorKey
	Kind     FieldKind
	Category string
}

// Classify maps an address to its field kind, or rejects it.
func Classify(a Address, f Filter) (Classified, bool) {
	if !a.UnderRoot() {
		return Classified{}, false
	}

	kind := a.Field()
	if !kind.Known() {
		return Classified{}, false
	}

	category, ok := CategoryLabel(a.Category())
	if !ok {
		return Classified{}, false
	}

	if !f.Match(a.Port()) {
		return Classified{}, false
	}

	return Classified{Key: a.Key(), Kind: kind, Category: category}, true
}
