package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sophialabs/xraydash/internal/app"
)

func main() {
	cfg := app.DefaultConfig()

	// The config file is applied first so env and flags override it.
	configPath := configFlag(os.Args[1:])
	if configPath != "" {
		if err := app.LoadFile(&cfg, configPath); err != nil {
			fail("failed to load config: %v", err)
		}
	}
	if err := app.LoadEnv(&cfg, os.LookupEnv); err != nil {
		fail("invalid environment: %v", err)
	}

	flag.String("config", configPath, "optional YAML config file")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "X-Ray backend base URL")
	flag.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "read executions from an X-Ray file store instead of the backend")
	flag.StringVar(&cfg.TemplatesDir, "templates-dir", cfg.TemplatesDir, "directory overriding the embedded page templates")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for numbers and currency")
	flag.StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "time zone for timestamps")
	flag.IntVar(&cfg.ListLimit, "list-limit", cfg.ListLimit, "maximum executions to list (0 = backend default)")
	flag.DurationVar(&cfg.GatewayTimeout, "gateway-timeout", cfg.GatewayTimeout, "timeout for backend calls")
	flag.Float64Var(&cfg.DemoRate, "demo-rate", cfg.DemoRate, "demo runs per second allowed per session (0 = unlimited)")
	flag.IntVar(&cfg.DemoBurst, "demo-burst", cfg.DemoBurst, "demo run burst per session")
	flag.Parse()

	a, err := app.New(cfg)
	if err != nil {
		fail("failed to initialize: %v", err)
	}

	if err := a.Run(context.Background()); err != nil {
		fail("error: %v", err)
	}
}

// configFlag finds -config before the flag set is parsed.
func configFlag(args []string) string {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("config", "", "")
	for i, arg := range args {
		if arg == "-config" || arg == "--config" ||
			strings.HasPrefix(arg, "-config=") || strings.HasPrefix(arg, "--config=") {
			_ = fs.Parse(args[i:])
			break
		}
	}
	return *path
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
