package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eddielth/check-sensorprobe/probe"
)

func record(category, field, port, slot int, value string) probe.RawRecord {
	oid := fmt.Sprintf("1.3.6.1.4.1.3854.3.5.%d.1.%d.0.0.0.%d.%d", category, field, port, slot)
	return probe.RawRecord{Address: probe.MustAddress(oid), Value: value}
}

func testResult() Result {
	report := probe.Evaluate([]probe.RawRecord{
		record(2, 2, 0, 0, "Sensor1"),
		record(2, 5, 0, 0, "C"),
		record(2, 6, 0, 0, "2"),
		record(2, 9, 0, 0, "100"),
		record(2, 10, 0, 0, "150"),
		record(2, 11, 0, 0, "300"),
		record(2, 12, 0, 0, "350"),
		record(2, 20, 0, 0, "215"),
		record(19, 2, 1, 0, "Door1"),
		record(19, 6, 1, 0, "4"),
	}, probe.Options{})

	return Result{
		Host:      "probe.example.net",
		CheckedAt: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
		Report:    report,
	}
}

func TestResultRows(t *testing.T) {
	rows := testResult().Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	temp := rows[0]
	if temp.Name != "Sensor1" || temp.Severity != "OK" || temp.State != 0 || temp.Unit != "C" {
		t.Errorf("temperature row: %+v", temp)
	}
	if temp.Value == nil || *temp.Value != 21.5 {
		t.Errorf("value: got %v", temp.Value)
	}
	if temp.LowCritical == nil || *temp.LowCritical != 10 || temp.HighCritical == nil || *temp.HighCritical != 35 {
		t.Errorf("thresholds not normalized: %+v", temp)
	}

	door := rows[1]
	if door.Port != 1 || door.Category != "Door" || door.Severity != "CRITICAL" || door.State != 2 {
		t.Errorf("door row: %+v", door)
	}
	if door.Value != nil || door.LowWarning != nil {
		t.Errorf("door row should carry no measurement: %+v", door)
	}

	if rows := (Result{}).Rows(); rows != nil {
		t.Errorf("expected nil rows without report, got %v", rows)
	}
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	defer fs.Close()

	res := testResult()
	if err := fs.Store(res); err != nil {
		t.Fatalf("Store: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "probe.example.net", "20261019-083000.000.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var decoded struct {
		Host   string `json:"host"`
		Report struct {
			Severity string `json:"severity"`
			Summary  string `json:"summary"`
		} `json:"report"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Host != res.Host || decoded.Report.Severity != "CRITICAL" || decoded.Report.Summary != res.Report.Summary {
		t.Errorf("unexpected document: %s", data)
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"":         "unknown",
		"10.0.0.1": "10.0.0.1",
		"fe80::1":  "fe80__1",
		"a/b\\c":   "a_b_c",
	}
	for in, want := range cases {
		if got := safeName(in); got != want {
			t.Errorf("safeName(%q): got %q, want %q", in, got, want)
		}
	}
}

type fakeBackend struct {
	stored int
	err    error
	closed bool
}

func (f *fakeBackend) Store(Result) error {
	f.stored++
	return f.err
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestManagerFanOut(t *testing.T) {
	ok := &fakeBackend{}
	failing := &fakeBackend{err: errors.New("broker down")}
	last := &fakeBackend{}

	m := NewManager([]StorageBackend{ok, failing})
	m.AddBackend(last)
	if m.Len() != 3 {
		t.Fatalf("Len: got %d", m.Len())
	}

	err := m.Store(testResult())
	if err == nil || !errors.Is(err, failing.err) {
		t.Errorf("expected joined backend error, got %v", err)
	}
	if ok.stored != 1 || failing.stored != 1 || last.stored != 1 {
		t.Errorf("every backend should be called once: %d %d %d", ok.stored, failing.stored, last.stored)
	}

	m.Close()
	if !ok.closed || !failing.closed || !last.closed {
		t.Error("every backend should be closed")
	}
}

func TestParseMySQLDSN(t *testing.T) {
	db, server, err := parseMySQLDSN("nagios:secret@tcp(db:3306)/sensorprobe?parseTime=true")
	if err != nil {
		t.Fatalf("parseMySQLDSN: %v", err)
	}
	if db != "sensorprobe" {
		t.Errorf("database: got %s", db)
	}
	if !strings.Contains(server, "@tcp(db:3306)/") || strings.Contains(server, "sensorprobe") {
		t.Errorf("server DSN should drop the database: got %s", server)
	}

	if _, _, err := parseMySQLDSN("nagios:secret@tcp(db:3306)/"); err == nil {
		t.Error("expected error without database name")
	}
}

func TestParsePostgreSQLDSN(t *testing.T) {
	cases := []struct {
		dsn, db, server string
	}{
		{
			"postgres://nagios:secret@db:5432/sensorprobe?sslmode=disable",
			"sensorprobe",
			"postgres://nagios:secret@db:5432/postgres?sslmode=disable",
		},
		{
			"host=db port=5432 user=nagios dbname=sensorprobe sslmode=disable",
			"sensorprobe",
			"host=db port=5432 user=nagios sslmode=disable dbname=postgres",
		},
	}

	for _, c := range cases {
		db, server, err := parsePostgreSQLDSN(c.dsn)
		if err != nil {
			t.Fatalf("parsePostgreSQLDSN(%q): %v", c.dsn, err)
		}
		if db != c.db || server != c.server {
			t.Errorf("parsePostgreSQLDSN(%q): got (%s, %s), want (%s, %s)", c.dsn, db, server, c.db, c.server)
		}
	}

	for _, bad := range []string{"postgres://db:5432/", "host=db user=nagios"} {
		if _, _, err := parsePostgreSQLDSN(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNewDatabaseStorageUnsupported(t *testing.T) {
	if _, err := NewDatabaseStorage("sqlite", "file.db"); err == nil {
		t.Error("expected error for unsupported database type")
	}
}
