package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sophialabs/xraydash/internal/app"
	"github.com/sophialabs/xraydash/internal/infrastructure/inbound/cli"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/backend"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/logging"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
	"github.com/sophialabs/xraydash/internal/infrastructure/services"
	"github.com/sophialabs/xraydash/internal/infrastructure/usecases"
)

func main() {
	cfg := app.DefaultConfig()
	if err := app.LoadEnv(&cfg, os.LookupEnv); err != nil {
		fail("invalid environment: %v", err)
	}
	flag.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "X-Ray backend base URL")
	flag.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "read executions from an X-Ray file store instead of the backend")
	flag.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for numbers and currency")
	flag.StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "time zone for timestamps")
	flag.StringVar(&cfg.LogLevel, "log-level", "error", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.NewText(os.Stderr, cfg.LogLevel)
	loc, err := clock.LoadLocation(cfg.TimeZone)
	if err != nil {
		fail("failed to load time zone %q: %v", cfg.TimeZone, err)
	}
	clk := clock.New(loc)

	var gateway ports.Gateway
	if cfg.StorageDir != "" {
		gateway, err = filesystem.NewExecutionStore(cfg.StorageDir, cfg.ListLimit, logger, clk, nil)
		if err != nil {
			fail("failed to open execution store: %v", err)
		}
	} else {
		gateway = backend.New(backend.Config{
			BaseURL:   cfg.APIBaseURL,
			Timeout:   cfg.GatewayTimeout,
			ListLimit: cfg.ListLimit,
		}, logger, clk, nil)
	}

	formatter := services.NewFormatter(cfg.Locale, loc)
	cmd := cli.New(usecases.NewInspectUseCase(gateway, formatter, nil, logger), formatter, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout+5*time.Second)
	defer cancel()
	if err := cmd.Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			flag.Usage()
		}
		fail("error: %v", err)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
