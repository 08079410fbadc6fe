package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"keysonscreen/internal/app"
	"keysonscreen/internal/config"
	"keysonscreen/internal/history"
	"keysonscreen/internal/input"
	"keysonscreen/internal/logging"
)

type RunCommand struct {
	wiring commandWiring
}

func NewRunCommand(wiring commandWiring) *RunCommand {
	return &RunCommand{wiring: wiring}
}

func (c *RunCommand) Run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	plain := fs.Bool("plain", false, "print one line per combination instead of the UI")
	logLevel := fs.String("log-level", "", "log level: debug|info|warn|error")
	var devicePaths stringList
	fs.Var(&devicePaths, "device", "input device path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := c.wiring.loadSettings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := settings.LogLevel()
	if *logLevel != "" {
		level = *logLevel
	}
	usePlain := *plain || !c.wiring.isTerminal()

	logger, closer, err := c.openLogger(usePlain, logging.ParseLevel(level))
	if err != nil {
		return err
	}
	defer closer.Close()

	explicit := []string(devicePaths)
	if len(explicit) == 0 {
		explicit = settings.DevicePaths()
	}
	devices, err := c.wiring.discover(settings.DeviceProbes(), explicit)
	if err != nil {
		return err
	}
	for _, device := range devices {
		logger.Info("input_device_opened",
			logging.F("path", device.Path()),
			logging.F("name", device.Name),
			logging.F("matches", device.Matches),
		)
	}

	var historyStore history.Store
	if settings.HistoryPersist() {
		opened, err := c.wiring.openStore(settings)
		if err != nil {
			logger.Warn("history_store_unavailable", logging.F("error", err))
		} else {
			defer opened.Close()
			historyStore = opened
		}
	}

	configPath, err := c.wiring.configPath()
	if err != nil {
		logger.Warn("config_path_unavailable", logging.F("error", err))
		configPath = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.wiring.runSession(ctx, app.RunConfig{
		Live:       config.NewLive(settings),
		ConfigPath: configPath,
		Sources:    input.Sources(devices),
		Store:      historyStore,
		Logger:     logger,
		Plain:      usePlain,
		Out:        c.wiring.stdout,
	})
}

// openLogger writes to stderr in plain mode and to the log file otherwise.
func (c *RunCommand) openLogger(plain bool, level logging.Level) (logging.Logger, io.Closer, error) {
	if plain {
		return logging.New(c.wiring.stderr, level), nopCloser{}, nil
	}
	path, err := c.wiring.logPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(path, level)
}
