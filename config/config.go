package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eddielth/check-sensorprobe/probe"
)

// EnvPrefix prefixes environment overrides, e.g. SENSORPROBE_PROBE_COMMUNITY.
const EnvPrefix = "SENSORPROBE"

// maxRoots bounds the number of subtrees walked per run.
const maxRoots = 4

// Config represents the application configuration
type Config struct {
	Probe   ProbeConfig   `mapstructure:"probe"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Storage StorageConfig `mapstructure:"storage"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// ShowVersion is set by -V; nothing else is validated then.
	ShowVersion bool `mapstructure:"-"`
}

// ProbeConfig describes the device and how to query it
type ProbeConfig struct {
	Hostname         string        `mapstructure:"hostname"`
	Community        string        `mapstructure:"community"`
	SNMPPort         int           `mapstructure:"snmp_port"`
	Version          string        `mapstructure:"version"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Port             int           `mapstructure:"port"`
	Verbose          int           `mapstructure:"verbose"`
	Roots            []string      `mapstructure:"roots"`
	UnknownEscalates bool          `mapstructure:"unknown_escalates"`
}

// LoggerConfig represents the logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	Console    bool   `mapstructure:"console"`
}

// StorageConfig represents the result archive configuration
type StorageConfig struct {
	File     FileStorageConfig     `mapstructure:"file"`
	Database DatabaseStorageConfig `mapstructure:"database"`
}

// FileStorageConfig represents the JSON file archive
type FileStorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DatabaseStorageConfig represents the SQL archive
type DatabaseStorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Type    string `mapstructure:"type"`
	DSN     string `mapstructure:"dsn"`
}

// MQTTConfig represents the result publisher
type MQTTConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Broker   string        `mapstructure:"broker"`
	ClientID string        `mapstructure:"client_id"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Topic    string        `mapstructure:"topic"`
	QoS      byte          `mapstructure:"qos"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MetricsConfig represents the Prometheus textfile output
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"hostname":          "probe.hostname",
	"community":         "probe.community",
	"port":              "probe.port",
	"verbose":           "probe.verbose",
	"snmp-port":         "probe.snmp_port",
	"snmp-version":      "probe.version",
	"timeout":           "probe.timeout",
	"unknown-escalates": "probe.unknown_escalates",
	"log-level":         "logger.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("probe.hostname", "")
	v.SetDefault("probe.community", "")
	v.SetDefault("probe.snmp_port", 161)
	v.SetDefault("probe.version", "2c")
	v.SetDefault("probe.timeout", 5*time.Second)
	v.SetDefault("probe.port", 0)
	v.SetDefault("probe.verbose", 0)
	v.SetDefault("probe.roots", []string{probe.SensorRoot})
	v.SetDefault("probe.unknown_escalates", false)

	v.SetDefault("logger.level", "WARN")
	v.SetDefault("logger.file_path", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.console", true)

	v.SetDefault("storage.file.enabled", false)
	v.SetDefault("storage.file.path", "./results")
	v.SetDefault("storage.database.enabled", false)
	v.SetDefault("storage.database.type", "mysql")
	v.SetDefault("storage.database.dsn", "")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic", "sensorprobe/{host}")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("mqtt.timeout", 5*time.Second)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile_path", "")
}

// NewFlagSet declares the command line surface.
func NewFlagSet(output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("check_sensorprobe2plus", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false

	fs.StringP("hostname", "H", "", "host of the sensor probe (required)")
	fs.StringP("community", "C", "", "read community of the sensor probe (required)")
	fs.IntP("port", "p", 0, "port of the sensors to check, 1-based (shows all if not set)")
	fs.CountP("verbose", "v", "increase output verbosity (-v or -vv)")
	fs.BoolP("version", "V", false, "print version and exit")
	fs.String("config", "", "optional YAML configuration file")
	fs.Int("snmp-port", 161, "UDP port of the SNMP agent")
	fs.String("snmp-version", "2c", "SNMP version (1 or 2c)")
	fs.Duration("timeout", 5*time.Second, "SNMP request timeout")
	fs.Bool("unknown-escalates", false, "let a sensor in state UNKNOWN raise the overall state")
	fs.String("log-level", "WARN", "log level written to stderr (DEBUG, INFO, WARN, ERROR)")
	return fs
}

// Load parses args and merges defaults, the optional config file,
// SENSORPROBE_* environment variables and flags, in increasing priority.
func Load(args []string, output io.Writer) (*Config, error) {
	fs := NewFlagSet(output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	showVersion, err := fs.GetBool("version")
	if err != nil {
		return nil, err
	}
	if showVersion {
		return &Config{ShowVersion: true}, nil
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, _ := fs.GetString("config")
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings and clamps verbosity.
func (c *Config) Validate() error {
	p := &c.Probe

	var errs []error
	if p.Hostname == "" {
		errs = append(errs, errors.New("hostname is required (-H)"))
	}
	if p.Community == "" {
		errs = append(errs, errors.New("community is required (-C)"))
	}
	if p.Port < 0 {
		errs = append(errs, fmt.Errorf("port must be >= 0, got %d", p.Port))
	}
	if p.SNMPPort <= 0 || p.SNMPPort > 65535 {
		errs = append(errs, fmt.Errorf("snmp port out of range: %d", p.SNMPPort))
	}
	switch p.Version {
	case "1", "2c":
	default:
		errs = append(errs, fmt.Errorf("unsupported SNMP version %q (want 1 or 2c)", p.Version))
	}
	if len(p.Roots) == 0 {
		p.Roots = []string{probe.SensorRoot}
	}
	if len(p.Roots) > maxRoots {
		errs = append(errs, fmt.Errorf("at most %d query roots allowed, got %d", maxRoots, len(p.Roots)))
	}
	if c.Storage.Database.Enabled && c.Storage.Database.DSN == "" {
		errs = append(errs, errors.New("storage.database.dsn is required when the database archive is enabled"))
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when publishing is enabled"))
	}
	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		errs = append(errs, errors.New("metrics.textfile_path is required when metrics are enabled"))
	}

	if p.Verbose > probe.MaxVerbosity {
		p.Verbose = probe.MaxVerbosity
	}
	if p.Verbose < 0 {
		p.Verbose = 0
	}

	return errors.Join(errs...)
}

// Options converts the probe settings for the evaluator.
func (p ProbeConfig) Options() probe.Options {
	return probe.Options{
		Filter:          probe.Filter{Port: p.Port},
		Verbosity:       p.Verbose,
		EscalateUnknown: p.UnknownEscalates,
	}
}
