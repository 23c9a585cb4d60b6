package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eddielth/check-sensorprobe/probe"
	"github.com/eddielth/check-sensorprobe/storage"
)

func rec(category, field, port, slot int, value string) probe.RawRecord {
	oid := fmt.Sprintf("1.3.6.1.4.1.3854.3.5.%d.1.%d.0.0.0.%d.%d", category, field, port, slot)
	return probe.RawRecord{Address: probe.MustAddress(oid), Value: value}
}

func result() storage.Result {
	report := probe.Evaluate([]probe.RawRecord{
		rec(2, 2, 0, 0, "Sensor1"),
		rec(2, 5, 0, 0, "C"),
		rec(2, 6, 0, 0, "2"),
		rec(2, 20, 0, 0, "215"),
		rec(19, 2, 1, 0, "Door1"),
		rec(19, 6, 1, 0, "4"),
	}, probe.Options{})
	return storage.Result{Host: "rack-7", CheckedAt: time.Unix(1760000000, 0), Report: report}
}

func TestRegistry(t *testing.T) {
	reg, err := Registry(result())
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	got := map[string]int{}
	for _, mf := range families {
		got[mf.GetName()] = len(mf.GetMetric())
	}
	want := map[string]int{
		"sensorprobe_check_state":             1,
		"sensorprobe_check_timestamp_seconds": 1,
		"sensorprobe_sensor_state":            2,
		"sensorprobe_sensor_value":            1,
	}
	for name, n := range want {
		if got[name] != n {
			t.Errorf("%s: got %d series, want %d", name, got[name], n)
		}
	}

	for _, mf := range families {
		if mf.GetName() != "sensorprobe_sensor_state" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["name"] == "Door1" {
				if labels["port"] != "2" || m.GetGauge().GetValue() != 2 {
					t.Errorf("door series: labels %v value %v", labels, m.GetGauge().GetValue())
				}
			}
		}
	}

	if _, err := Registry(storage.Result{Host: "rack-7"}); err == nil {
		t.Error("expected error without report")
	}
}

func TestTextfileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector", "sensorprobe.prom")
	tf, err := NewTextfile(path)
	if err != nil {
		t.Fatalf("NewTextfile: %v", err)
	}
	defer tf.Close()

	if err := tf.Store(result()); err != nil {
		t.Fatalf("Store: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`sensorprobe_check_state{host="rack-7"} 2`,
		`sensorprobe_sensor_value{category="Temperature",host="rack-7",name="Sensor1",port="1",slot="0",unit="C"} 21.5`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}

	if _, err := NewTextfile(""); err == nil {
		t.Error("expected error for empty path")
	}
}
