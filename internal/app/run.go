package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"keysonscreen/internal/config"
	"keysonscreen/internal/history"
	"keysonscreen/internal/input"
	"keysonscreen/internal/keys"
	"keysonscreen/internal/logging"
)

const eventBuffer = 64

// RunConfig describes one keysonscreen session.
type RunConfig struct {
	Live       *config.Live
	ConfigPath string
	Sources    []input.Source
	Store      history.Store
	Logger     logging.Logger
	// Plain prints snapshots as log lines to Out instead of starting the UI.
	Plain bool
	Out   io.Writer
}

// Run reads input until ctx is done, the user quits the UI, or, in plain
// mode, every device is gone.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Live == nil {
		return errors.New("live settings are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Plain {
		return runPlain(ctx, cfg)
	}
	return runUI(ctx, cfg)
}

func runPlain(ctx context.Context, cfg RunConfig) error {
	settings := cfg.Live.Get()
	opts := []MonitorOption{
		WithMonitorLogger(cfg.Logger),
		WithOptions(liveOptions(cfg.Live)),
		WithObserver(NewPlainPrinter(cfg.Out)),
	}
	if cfg.Store != nil && settings.HistoryPersist() {
		log := history.NewLog(settings.HistoryCapacity())
		loadCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		err := history.Load(loadCtx, log, cfg.Store)
		cancel()
		if err != nil {
			cfg.Logger.Warn("history_load_failed", logging.F("error", err))
		}
		opts = append(opts, WithObserver(history.NewRecorder(log, cfg.Store, cfg.Logger)))
	}
	monitor := NewMonitor(opts...)
	reader := input.NewReader(input.WithLogger(cfg.Logger))

	events := make(chan input.RawEvent, eventBuffer)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(events)
		return reader.Run(gctx, cfg.Sources, events)
	})
	group.Go(func() error {
		// Events already read are drained even after the reader fails.
		return monitor.Run(ctx, events)
	})
	startWatcher(gctx, group, cfg)
	return ignoreCanceled(group.Wait())
}

func runUI(ctx context.Context, cfg RunConfig) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	configPath := cfg.ConfigPath
	model := NewModel(ModelConfig{
		Settings: cfg.Live.Get(),
		Store:    historyStoreFor(cfg),
		Devices:  len(cfg.Sources),
		SaveSettings: func(next config.Settings) error {
			cfg.Live.Set(next)
			if configPath == "" {
				return nil
			}
			return config.SaveToPath(configPath, next)
		},
	})
	program := tea.NewProgram(&model, tea.WithContext(runCtx))
	cfg.Live.Subscribe(func(next config.Settings) {
		program.Send(settingsMsg{settings: next})
	})

	monitor := NewMonitor(
		WithMonitorLogger(cfg.Logger),
		WithOptions(liveOptions(cfg.Live)),
		WithObserver(ObserverFunc(func(snap keys.Snapshot) {
			program.Send(snapshotMsg{snap: snap})
		})),
	)
	reader := input.NewReader(
		input.WithLogger(cfg.Logger),
		input.WithDeviceLost(func(path string) {
			program.Send(deviceLostMsg{path: path})
		}),
	)

	var (
		readerMu  sync.Mutex
		readerErr error
	)
	events := make(chan input.RawEvent, eventBuffer)
	group, gctx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		defer close(events)
		// The UI stays up after input stops so the error can be read.
		err := ignoreCanceled(reader.Run(gctx, cfg.Sources, events))
		if err != nil {
			readerMu.Lock()
			readerErr = err
			readerMu.Unlock()
			program.Send(readerStoppedMsg{err: err})
		}
		return nil
	})
	group.Go(func() error {
		return ignoreCanceled(monitor.Run(gctx, events))
	})
	startWatcher(gctx, group, cfg)

	_, err := program.Run()
	cancel()
	waitErr := group.Wait()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}
	readerMu.Lock()
	defer readerMu.Unlock()
	return readerErr
}

func startWatcher(ctx context.Context, group *errgroup.Group, cfg RunConfig) {
	if cfg.ConfigPath == "" {
		return
	}
	group.Go(func() error {
		if err := config.Watch(ctx, cfg.ConfigPath, cfg.Live, cfg.Logger); err != nil {
			// Live reload is optional.
			cfg.Logger.Warn("config_watch_failed", logging.F("error", err))
		}
		return nil
	})
}

func historyStoreFor(cfg RunConfig) history.Store {
	if cfg.Store == nil || !cfg.Live.Get().HistoryPersist() {
		return nil
	}
	return cfg.Store
}

func liveOptions(live *config.Live) func() keys.Options {
	return func() keys.Options {
		return live.Get().KeyOptions()
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
