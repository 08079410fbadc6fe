package main

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"keysonscreen/internal/app"
	"keysonscreen/internal/config"
	"keysonscreen/internal/input"
	"keysonscreen/internal/store"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout       io.Writer
	stderr       io.Writer
	configPath   func() (string, error)
	loadSettings func() (config.Settings, error)
	saveSettings func(config.Settings) error
	discover     func(probes, explicit []string) ([]*input.Device, error)
	openStore    func(config.Settings) (store.HistoryStore, error)
	runSession   func(ctx context.Context, cfg app.RunConfig) error
	isTerminal   func() bool
	termWidth    func() int
	logPath      func() (string, error)
	version      string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:       stdout,
		stderr:       stderr,
		configPath:   config.ConfigPath,
		loadSettings: config.Load,
		saveSettings: config.Save,
		discover:     input.Discover,
		openStore:    openHistoryStore,
		runSession:   app.Run,
		isTerminal:   stdoutIsTerminal,
		termWidth:    stdoutWidth,
		logPath:      config.LogPath,
		version:      buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"run":     NewRunCommand(wiring),
		"devices": NewDevicesCommand(wiring.stdout, wiring.stderr, wiring.loadSettings, wiring.discover),
		"keys":    NewKeysCommand(wiring.stdout, wiring.stderr, wiring.loadSettings),
		"history": NewHistoryCommand(wiring.stdout, wiring.stderr, wiring.loadSettings, wiring.openStore, wiring.termWidth),
		"ignore":  NewIgnoreCommand(wiring.stdout, wiring.stderr, wiring.loadSettings, wiring.saveSettings),
		"divider": NewDividerCommand(wiring.stdout, wiring.stderr, wiring.loadSettings, wiring.saveSettings),
		"config":  NewConfigCommand(wiring.stdout, wiring.stderr, wiring.configPath, wiring.loadSettings),
	}
}

func openHistoryStore(settings config.Settings) (store.HistoryStore, error) {
	backend := settings.HistoryBackend()
	var (
		path string
		err  error
	)
	switch backend {
	case config.BackendFile:
		path, err = config.HistoryFilePath()
	default:
		path, err = config.HistoryDBPath()
	}
	if err != nil {
		return nil, err
	}
	return store.Open(backend, path, settings.HistoryCapacity())
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func stdoutWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
