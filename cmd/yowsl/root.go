package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/ubuntu/yowsl"
)

// distroAPI is the part of yowsl.API that the commands use.
type distroAPI interface {
	RegisterDistro(name, archivePath string) error
	UnregisterDistro(name string) error
	DistroConfiguration(name string) (yowsl.Configuration, error)
	ConfigureDistro(c yowsl.Configuration) error
	Launch(name, command string, useCWD bool) (uint32, error)
}

// connectFunc gives access to the native WSL API.
type connectFunc func(ctx context.Context, cfg config, logger *log.Logger) (distroAPI, error)

func newDistroAPI(ctx context.Context, cfg config, logger *log.Logger) (distroAPI, error) {
	api, err := yowsl.New(ctx,
		yowsl.WithLibraries(cfg.ManagementLibrary, cfg.ReleaseLibrary),
		yowsl.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return api, nil
}

// app is shared by all commands once the root command has loaded the configuration.
type app struct {
	logger  *log.Logger
	connect connectFunc
	cfg     config
}

func (a *app) api(ctx context.Context) (distroAPI, error) {
	return a.connect(ctx, a.cfg, a.logger)
}

func newRootCommand(logger *log.Logger, connect connectFunc) *cobra.Command {
	a := &app{logger: logger, connect: connect}

	var (
		logLevel   string
		configPath string
	)

	root := &cobra.Command{
		Use:           "yowsl",
		Short:         "Yet another Windows Subsystem for Linux tweaker",
		Long:          "yowsl registers, configures and launches WSL distros through the native WSL API.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, configKeyLogLevel, defaultLogLevel, "Set log verbosity (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default is yowsl/yowsl.toml in the user configuration directory)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath, cmd.Flags())
		if err != nil {
			return err
		}

		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %v", cfg.LogLevel, err)
		}
		a.logger.SetLevel(level)
		a.cfg = cfg

		a.logger.Debug("Configuration loaded", "management", cfg.ManagementLibrary, "release", cfg.ReleaseLibrary)
		return nil
	}

	root.AddCommand(
		newRegisterCommand(a),
		newUnregisterCommand(a),
		newGetConfigurationCommand(a),
		newSetConfigurationCommand(a),
		newLaunchCommand(a),
	)
	return root
}
