package main

import (
	"context"
	"fmt"

	"github.com/aleister1102/etagwatch/internal/config"
	"github.com/aleister1102/etagwatch/internal/logger"
	"github.com/aleister1102/etagwatch/internal/monitor"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	root     *cobra.Command
	flags    appFlags
	cfg      *config.GlobalConfig
	logger   zerolog.Logger
	exitCode int
}

func newApp() *app {
	a := &app{logger: zerolog.Nop()}

	a.root = &cobra.Command{
		Use:   "etagwatch",
		Short: "Report whether an HTTP resource changed since the last check",
		Long: "Issues a HEAD request against one URL, compares the ETag with the last one recorded " +
			"in a local SQLite store, and records the new value when it differs. Run it from cron or a " +
			"shell loop; it performs exactly one check per invocation.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	a.flags.register(a.root)

	a.root.AddCommand(
		a.newCheckCmd(),
		a.newLatestCmd(),
		a.newStoredCmd(),
	)
	return a
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadGlobalConfig(a.flags.GlobalConfigFile, a.logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.flags.URL != "" {
		cfg.MonitorConfig.URL = a.flags.URL
	}
	if a.flags.StorePath != "" {
		cfg.MonitorConfig.StorePath = a.flags.StorePath
	}
	if a.flags.LogLevel != "" {
		cfg.LogConfig.LogLevel = a.flags.LogLevel
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	zLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a.cfg = cfg
	a.logger = zLogger
	return nil
}

func (a *app) openMonitor(ctx context.Context) (*monitor.ChangeMonitor, error) {
	m, err := monitor.New(ctx, a.cfg.MonitorConfig, a.logger)
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to initialize change monitor")
		return nil, err
	}
	return m, nil
}
