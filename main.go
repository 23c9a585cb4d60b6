package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/eddielth/check-sensorprobe/check"
	"github.com/eddielth/check-sensorprobe/config"
	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/metrics"
	"github.com/eddielth/check-sensorprobe/mqtt"
	"github.com/eddielth/check-sensorprobe/probe"
	"github.com/eddielth/check-sensorprobe/snmp"
	"github.com/eddielth/check-sensorprobe/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(stdout, probe.StatusLine(probe.Unknown, fmt.Sprintf("internal error: %v", r)))
			code = int(probe.Unknown)
		}
	}()

	cfg, err := config.Load(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return int(probe.Unknown)
	}
	if err != nil {
		fmt.Fprintln(stdout, probe.StatusLine(probe.Unknown, err.Error()))
		return int(probe.Unknown)
	}

	if cfg.ShowVersion {
		fmt.Fprintln(stdout, probe.VersionString)
		return int(probe.OK)
	}

	lc := cfg.Logger
	if err := logger.InitFromConfig(lc.Level, lc.FilePath, lc.MaxSize, lc.MaxBackups, lc.Console); err != nil {
		logger.Warn("logger configuration rejected, keeping defaults: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := query(ctx, cfg)
	if _, err := report.WriteTo(stdout); err != nil {
		logger.Error("failed to write output: %v", err)
	}

	publish(cfg, report, time.Now())
	return report.ExitCode()
}

// query performs the single SNMP session of a run.
func query(ctx context.Context, cfg *config.Config) *probe.Report {
	client, err := snmp.NewClient(cfg.Probe)
	if err != nil {
		return probe.Failure(probe.Unknown, "%s", err.Error())
	}

	if err := client.Connect(ctx); err != nil {
		return check.TransportFailure(err)
	}
	defer client.Close()

	return check.Run(ctx, client, cfg.Probe.Roots, cfg.Probe.Options())
}

// publish hands the result to the configured sinks. Sink failures are
// logged and never change the check outcome.
func publish(cfg *config.Config, report *probe.Report, now time.Time) {
	manager := storage.NewManager(nil)
	defer manager.Close()

	if cfg.Storage.File.Enabled {
		fs, err := storage.NewFileStorage(cfg.Storage.File.Path)
		if err != nil {
			logger.Error("file storage disabled: %v", err)
		} else {
			manager.AddBackend(fs)
		}
	}

	if cfg.Storage.Database.Enabled {
		db, err := storage.NewDatabaseStorage(cfg.Storage.Database.Type, cfg.Storage.Database.DSN)
		if err != nil {
			logger.Error("database storage disabled: %v", err)
		} else {
			manager.AddBackend(db)
		}
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err == nil {
			err = pub.Connect()
		}
		if err != nil {
			logger.Error("MQTT publishing disabled: %v", err)
		} else {
			manager.AddBackend(pub)
		}
	}

	if cfg.Metrics.Enabled {
		tf, err := metrics.NewTextfile(cfg.Metrics.TextfilePath)
		if err != nil {
			logger.Error("metrics textfile disabled: %v", err)
		} else {
			manager.AddBackend(tf)
		}
	}

	if manager.Len() == 0 {
		return
	}

	res := storage.Result{
		Host:       cfg.Probe.Hostname,
		PortFilter: cfg.Probe.Port,
		CheckedAt:  now,
		Report:     report,
	}
	if err := manager.Store(res); err != nil {
		logger.Warn("result was not delivered to every sink")
	}
}
