package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// daemonConfig holds the daemon settings. Every flag defaults to its VAXSIM_*
// environment variable so the daemon can be configured from a .env file.
type daemonConfig struct {
	GRPCAddr       string
	HTTPAddr       string
	LogLevel       string
	CatalogPath    string
	DBPath         string
	SweepCron      string
	SweepScenarios []string
	Retention      time.Duration
	CreateRate     int
}

// loadEnvFile exports the variables of path that are not already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func parseDaemonConfig(args []string, getenv func(string) string) (daemonConfig, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	var cfg daemonConfig
	var scenarios string
	var retention string
	var createRate string

	fs := flag.NewFlagSet("simd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", env("VAXSIM_GRPC_ADDR", ":50051"), "gRPC listen address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", env("VAXSIM_HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", env("VAXSIM_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.CatalogPath, "catalog", env("VAXSIM_CATALOG", ""), "scenario catalog YAML overlaid on the built-ins")
	fs.StringVar(&cfg.DBPath, "db", env("VAXSIM_DB", ""), "SQLite file for the event-log archive (empty disables it)")
	fs.StringVar(&cfg.SweepCron, "sweep-cron", env("VAXSIM_SWEEP_CRON", ""), "cron schedule re-running --sweep-scenarios")
	fs.StringVar(&scenarios, "sweep-scenarios", env("VAXSIM_SWEEP_SCENARIOS", ""), "comma-separated catalog scenarios for the sweep")
	fs.StringVar(&retention, "retention", env("VAXSIM_RETENTION", "0"), "how long finished runs are kept (0 keeps them)")
	fs.StringVar(&createRate, "create-rate", env("VAXSIM_CREATE_RATE", "0"), "run creations allowed per client per second (0 disables)")
	if err := fs.Parse(args); err != nil {
		return daemonConfig{}, err
	}

	for _, name := range strings.Split(scenarios, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.SweepScenarios = append(cfg.SweepScenarios, name)
		}
	}
	if retention != "0" {
		d, err := time.ParseDuration(retention)
		if err != nil {
			return daemonConfig{}, err
		}
		cfg.Retention = d
	}
	n, err := strconv.Atoi(createRate)
	if err != nil {
		return daemonConfig{}, fmt.Errorf("create-rate: %w", err)
	}
	cfg.CreateRate = n
	return cfg, nil
}
