package probe

import (
	"fmt"
	"strconv"
	"strings"
)

// addressLen is the number of OID arcs the classifier inspects.
const addressLen = 17

// Positions inside a sensor table OID:
// 1.3.6.1.4.1.3854.3.5.<category>.1.<field>.x.x.x.<port>.<slot>
const (
	categoryIndex = 9
	fieldIndex    = 11
	portIndex     = 15
	slotIndex     = 16
)

// SensorRoot is the subtree holding all sensorProbe2+ sensor tables.
const SensorRoot = "1.3.6.1.4.1.3854.3.5"

var rootArcs = [...]uint32{1, 3, 6, 1, 4, 1, 3854, 3, 5}

// Address is a fixed-width view of a sensor table OID.
type Address [addressLen]uint32

// ParseAddress parses a dotted OID. A leading dot is accepted.
// Arcs beyond the ones the classifier looks at are ignored.
func ParseAddress(oid string) (Address, error) {
	var a Address
	parts := strings.Split(strings.TrimPrefix(oid, "."), ".")
	if len(parts) < addressLen {
		return a, fmt.Errorf("oid %s too short: %d arcs, need %d", oid, len(parts), addressLen)
	}

	for i := 0; i < addressLen; i++ {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			return a, fmt.Errorf("oid %s: invalid arc %q: %w", oid, parts[i], err)
		}
		a[i] = uint32(n)
	}
	return a, nil
}

// MustAddress is ParseAddress for literals known to be valid.
func MustAddress(oid string) Address {
	a, err := ParseAddress(oid)
	if err != nil {
		panic(err)
	}
	return a
}

// UnderRoot reports whether the address lies in the sensor subtree.
func (a Address) UnderRoot() bool {
	for i, arc := range rootArcs {
		if a[i] != arc {
			return false
		}
	}
	return true
}

// Category returns the raw category code.
func (a Address) Category() int { return int(a[categoryIndex]) }

// Field returns the field position code.
func (a Address) Field() FieldKind { return FieldKind(a[fieldIndex]) }

// Port returns the 0-based port the sensor is plugged into.
func (a Address) Port() int { return int(a[portIndex]) }

// Slot returns the sensor index on its port.
func (a Address) Slot() int { return int(a[slotIndex]) }

// Key returns the sensor the address belongs to.
func (a Address) Key() SensorKey {
	return SensorKey{Port: a.Port(), Slot: a.Slot()}
}

func (a Address) String() string {
	var b strings.Builder
	for i, arc := range a {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(arc), 10))
	}
	return b.String()
}

// SensorKey identifies one physical sensor within a query.
type SensorKey struct {
	Port int `json:"port"`
	Slot int `json:"slot"`
}

func (k SensorKey) String() string {
	return fmt.Sprintf("%d/%d", k.Port, k.Slot)
}

// RawRecord is one variable binding read from the device.
type RawRecord struct {
	Address Address
	Value   string
}
