package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"keysonscreen/internal/config"
	"keysonscreen/internal/history"
	"keysonscreen/internal/keys"
)

const (
	historyTitle     = "Last %d key combinations pressed..."
	storeTimeout     = 2 * time.Second
	clipboardTimeout = 3 * time.Second
	minHistoryHeight = 3
	defaultWidth     = 80
	defaultHeight    = 24
)

// ModelConfig wires the model to its collaborators. Nil collaborators
// disable the matching feature.
type ModelConfig struct {
	Settings     config.Settings
	Store        history.Store
	SaveSettings func(config.Settings) error
	Clipboard    clipboardService
	Devices      int
}

// Model renders the current key combination and the history pane. It owns
// its history log; the Monitor reaches it only through messages.
type Model struct {
	settings     config.Settings
	saveSettings func(config.Settings) error
	store        history.Store
	clipboard    clipboardService
	log          *history.Log
	keys         keyMap
	history      viewport.Model

	current keys.Snapshot
	opacity float64
	fading  bool

	// Store operations run one at a time, in the order they were queued, so
	// persisted history keeps press order.
	storeQueue  []tea.Cmd
	storeBusy   bool
	loading     bool
	discardLoad bool

	width   int
	height  int
	devices int
	status  string
	lastErr string
}

func NewModel(cfg ModelConfig) Model {
	clip := cfg.Clipboard
	if clip == nil {
		clip = defaultClipboardService{}
	}
	m := Model{
		settings:     cfg.Settings,
		saveSettings: cfg.SaveSettings,
		store:        cfg.Store,
		clipboard:    clip,
		log:          history.NewLog(cfg.Settings.HistoryCapacity()),
		keys:         defaultKeyMap(),
		history:      viewport.New(viewport.WithWidth(defaultWidth), viewport.WithHeight(minHistoryHeight)),
		width:        defaultWidth,
		height:       defaultHeight,
		devices:      cfg.Devices,
	}
	m.resize()
	m.refreshHistory()
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.store == nil {
		return nil
	}
	m.loading = true
	return m.enqueueStore(loadHistoryCmd(m.store, m.log.Capacity()))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	case snapshotMsg:
		return m, m.handleSnapshot(msg.snap)
	case fadeTickMsg:
		return m, m.handleFadeTick()
	case settingsMsg:
		m.applySettings(msg.settings)
		return m, nil
	case historyLoadedMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.setError("history load failed", msg.err)
		case m.discardLoad:
			m.discardLoad = false
		default:
			// Entries recorded while loading are newer than the stored ones.
			m.log.Merge(msg.entries)
			m.refreshHistory()
		}
		return m, m.nextStoreCmd()
	case historyPersistedMsg:
		if msg.err != nil {
			m.setError("history save failed", msg.err)
		}
		return m, m.nextStoreCmd()
	case settingsSavedMsg:
		if msg.err != nil {
			m.setError("settings save failed", msg.err)
		}
		return m, nil
	case clipboardCopiedMsg:
		if msg.err != nil {
			m.setError("copy failed", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("copied %d combinations (%s)", msg.count, msg.method)
		return m, nil
	case deviceLostMsg:
		m.devices = max(m.devices-1, 0)
		m.status = "device lost: " + msg.path
		return m, nil
	case readerStoppedMsg:
		if msg.err != nil {
			m.setError("input stopped", msg.err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Pause):
		if m.log.Paused() {
			m.log.Resume()
			m.status = "history resumed"
		} else {
			m.log.Pause()
			m.status = "history paused"
		}
		return nil
	case key.Matches(msg, m.keys.Differentiate):
		return m.updateSettings(m.settings.WithDifferentiate(!m.settings.Differentiate()))
	case key.Matches(msg, m.keys.Fade):
		return m.updateSettings(m.settings.WithFade(!m.settings.FadeEnabled()))
	case key.Matches(msg, m.keys.HistoryPane):
		return m.updateSettings(m.settings.WithHistoryPane(!m.settings.HistoryEnabled()))
	case key.Matches(msg, m.keys.Copy):
		return copyHistoryCmd(m.clipboard, m.log.Lines(m.settings.Divider()))
	case key.Matches(msg, m.keys.Clear):
		m.log.Clear()
		m.refreshHistory()
		m.status = "history cleared"
		if m.store == nil {
			return nil
		}
		if m.loading {
			m.discardLoad = true
		}
		return m.enqueueStore(clearHistoryCmd(m.store))
	}
	if !m.settings.HistoryEnabled() {
		return nil
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return cmd
}

func (m *Model) handleSnapshot(snap keys.Snapshot) tea.Cmd {
	m.current = snap
	m.opacity = 1
	var cmds []tea.Cmd
	if entry, ok := m.log.Append(snap); ok {
		m.refreshHistory()
		if m.store != nil && m.settings.HistoryPersist() {
			cmds = append(cmds, persistEntryCmd(m.store, entry))
		}
	}
	if m.settings.FadeEnabled() && !m.fading {
		m.fading = true
		cmds = append(cmds, fadeTickCmd(m.settings.FadeInterval()))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// handleFadeTick lowers opacity by one step. Only one tick chain runs at a
// time; it stops once the text is fully faded or fading is turned off.
func (m *Model) handleFadeTick() tea.Cmd {
	if !m.settings.FadeEnabled() {
		m.fading = false
		m.opacity = 1
		return nil
	}
	m.opacity -= m.settings.FadeStep()
	if m.opacity <= 0 {
		m.opacity = 0
		m.fading = false
		return nil
	}
	return fadeTickCmd(m.settings.FadeInterval())
}

func (m *Model) updateSettings(next config.Settings) tea.Cmd {
	m.applySettings(next)
	if m.saveSettings == nil {
		return nil
	}
	save := m.saveSettings
	return func() tea.Msg {
		return settingsSavedMsg{err: save(next)}
	}
}

func (m *Model) applySettings(next config.Settings) {
	m.settings = next
	if !next.FadeEnabled() {
		m.opacity = 1
	}
	m.resize()
	m.refreshHistory()
}

// enqueueStore queues a store operation and returns it if nothing else is
// in flight. The completion message starts the next one.
func (m *Model) enqueueStore(cmd tea.Cmd) tea.Cmd {
	m.storeQueue = append(m.storeQueue, cmd)
	if m.storeBusy {
		return nil
	}
	return m.nextStoreCmd()
}

func (m *Model) nextStoreCmd() tea.Cmd {
	if len(m.storeQueue) == 0 {
		m.storeBusy = false
		return nil
	}
	cmd := m.storeQueue[0]
	m.storeQueue = m.storeQueue[1:]
	m.storeBusy = true
	return cmd
}

func (m *Model) setError(prefix string, err error) {
	m.lastErr = prefix + ": " + err.Error()
}

func (m *Model) resize() {
	width := max(m.width-2*historyPanePaddingHorizontal-2, 1)
	height := max(m.height-historyPaneBorderRows-6, minHistoryHeight)
	m.history.SetWidth(width)
	m.history.SetHeight(height)
}

func (m *Model) refreshHistory() {
	lines := m.log.Lines(m.settings.Divider())
	if len(lines) == 0 {
		m.history.SetContent(helpStyle.Render("nothing yet"))
		return
	}
	for i, line := range lines {
		lines[i] = historyEntryStyle.Render(line)
	}
	m.history.SetContent(strings.Join(lines, "\n"))
}

func fadeTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return fadeTickMsg{at: t}
	})
}

func loadHistoryCmd(store history.Store, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		entries, err := store.Recent(ctx, limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func persistEntryCmd(store history.Store, entry history.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return historyPersistedMsg{err: store.Append(ctx, entry)}
	}
}

func clearHistoryCmd(store history.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return historyPersistedMsg{err: store.Clear(ctx)}
	}
}

func copyHistoryCmd(clip clipboardService, lines []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
		defer cancel()
		method, err := clip.Copy(ctx, strings.Join(lines, "\n"))
		return clipboardCopiedMsg{method: method, count: len(lines), err: err}
	}
}
