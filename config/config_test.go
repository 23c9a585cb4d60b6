package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/eddielth/check-sensorprobe/probe"
)

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{"-H", "10.0.0.5", "-C", "public", "-p", "2", "-vvv"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := cfg.Probe
	if p.Hostname != "10.0.0.5" || p.Community != "public" || p.Port != 2 {
		t.Errorf("unexpected probe config: %+v", p)
	}
	if p.Verbose != probe.MaxVerbosity {
		t.Errorf("verbose should be clamped to %d, got %d", probe.MaxVerbosity, p.Verbose)
	}
	if p.SNMPPort != 161 || p.Version != "2c" || p.Timeout != 5*time.Second {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if len(p.Roots) != 1 || p.Roots[0] != probe.SensorRoot {
		t.Errorf("roots: got %v", p.Roots)
	}

	opts := p.Options()
	if opts.Filter.Port != 2 || opts.Verbosity != 2 || opts.EscalateUnknown {
		t.Errorf("options: got %+v", opts)
	}
}

func TestLoadLongFlags(t *testing.T) {
	cfg, err := Load([]string{"--hostname=probe", "--community", "secret", "--verbose", "--snmp-version", "1", "--timeout", "2s", "--unknown-escalates"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := cfg.Probe
	if p.Hostname != "probe" || p.Community != "secret" || p.Verbose != 1 || p.Version != "1" {
		t.Errorf("unexpected probe config: %+v", p)
	}
	if p.Timeout != 2*time.Second || !p.UnknownEscalates {
		t.Errorf("timeout/escalation not applied: %+v", p)
	}
}

func TestLoadVersion(t *testing.T) {
	cfg, err := Load([]string{"-V"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.ShowVersion {
		t.Error("expected ShowVersion")
	}
}

func TestLoadRequired(t *testing.T) {
	cases := map[string][]string{
		"no_args":        {},
		"no_community":   {"-H", "probe"},
		"no_hostname":    {"-C", "public"},
		"negative_port":  {"-H", "probe", "-C", "public", "-p", "-1"},
		"bad_version":    {"-H", "probe", "-C", "public", "--snmp-version", "3"},
		"bad_snmp_port":  {"-H", "probe", "-C", "public", "--snmp-port", "0"},
		"unknown_flag":   {"-H", "probe", "-C", "public", "--bogus"},
		"missing_config": {"-H", "probe", "-C", "public", "--config", "/nonexistent/check.yaml"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(args, io.Discard); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"--help"}, io.Discard)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("expected pflag.ErrHelp, got %v", err)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "check.yaml")
	content := `
probe:
  hostname: from-file
  community: file-community
  port: 3
  roots:
    - 1.3.6.1.4.1.3854.3.5.2
    - 1.3.6.1.4.1.3854.3.5.19
logger:
  level: debug
storage:
  file:
    enabled: true
    path: ` + filepath.Join(dir, "results") + `
metrics:
  enabled: true
  textfile_path: ` + filepath.Join(dir, "sensorprobe.prom") + `
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SENSORPROBE_PROBE_COMMUNITY", "env-community")

	cfg, err := Load([]string{"--config", path, "-H", "from-flag"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Probe.Hostname != "from-flag" {
		t.Errorf("flag should win over file: got %s", cfg.Probe.Hostname)
	}
	if cfg.Probe.Community != "env-community" {
		t.Errorf("env should win over file: got %s", cfg.Probe.Community)
	}
	if cfg.Probe.Port != 3 {
		t.Errorf("port from file: got %d", cfg.Probe.Port)
	}
	if len(cfg.Probe.Roots) != 2 {
		t.Errorf("roots from file: got %v", cfg.Probe.Roots)
	}
	if cfg.Logger.Level != "debug" || !cfg.Storage.File.Enabled || !cfg.Metrics.Enabled {
		t.Errorf("sections not decoded: %+v", cfg)
	}
}

func TestValidateSinks(t *testing.T) {
	base := Config{Probe: ProbeConfig{Hostname: "h", Community: "c", SNMPPort: 161, Version: "2c"}}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config: %v", err)
	}

	db := base
	db.Storage.Database.Enabled = true
	if err := db.Validate(); err == nil {
		t.Error("expected error for database without DSN")
	}

	mq := base
	mq.MQTT.Enabled = true
	if err := mq.Validate(); err == nil {
		t.Error("expected error for MQTT without broker")
	}

	roots := base
	roots.Probe.Roots = []string{"a", "b", "c", "d", "e"}
	if err := roots.Validate(); err == nil {
		t.Error("expected error for more than four roots")
	}
}
