package probe

const (
	// categoryNotSensor marks the device's own status table.
	categoryNotSensor = 1
	// maxCategory is the highest sensor table code the device defines.
	maxCategory = 27
)

// categoryLabels maps a sensor table code to a readable label.
var categoryLabels = map[int]string{
	2:  "Temperature",
	3:  "Humidity",
	4:  "Dry Contact",
	5:  "Current",
	6:  "DC Voltage",
	7:  "Airflow",
	8:  "Motion",
	9:  "Water",
	10: "Security",
	11: "Siren",
	12: "Relay",
	13: "AC Voltage",
	14: "Smoke",
	15: "Power",
	16: "Tank Sender",
	17: "Fuel Level",
	18: "Analog",
	19: "Door",
	20: "Virtual",
	21: "Thermocouple",
	22: "Digital Output",
	23: "Power Meter",
	24: "Dew Point",
	25: "Water Rope",
	26: "Modbus",
	27: "Rack Door",
}

// CategoryLabel resolves a category code. The second result is false for
// codes that do not denote a sensor.
func CategoryLabel(code int) (string, bool) {
	if code == categoryNotSensor || code > maxCategory {
		return "", false
	}
	label, ok := categoryLabels[code]
	return label, ok
}
