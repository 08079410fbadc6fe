package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/holoplot/go-evdev"

	"keysonscreen/internal/app"
	"keysonscreen/internal/config"
	"keysonscreen/internal/history"
	"keysonscreen/internal/input"
	"keysonscreen/internal/keys"
	"keysonscreen/internal/store"
)

type fakeSource struct {
	path   string
	closed int
}

func (s *fakeSource) Path() string                        { return s.path }
func (s *fakeSource) ReadOne() (*evdev.InputEvent, error) { return nil, errors.New("unused") }
func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

type fakeHistoryStore struct {
	entries []history.Entry
	limit   int
	cleared bool
	closed  bool
}

func (s *fakeHistoryStore) Append(_ context.Context, entry history.Entry) error {
	s.entries = append([]history.Entry{entry}, s.entries...)
	return nil
}

func (s *fakeHistoryStore) Recent(_ context.Context, limit int) ([]history.Entry, error) {
	s.limit = limit
	if limit > 0 && len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func (s *fakeHistoryStore) Clear(context.Context) error {
	s.cleared = true
	s.entries = nil
	return nil
}

func (s *fakeHistoryStore) Close() error {
	s.closed = true
	return nil
}

func (s *fakeHistoryStore) Backend() string { return store.BackendFile }

func testWiring(stdout *bytes.Buffer) commandWiring {
	return commandWiring{
		stdout:       stdout,
		stderr:       &bytes.Buffer{},
		configPath:   func() (string, error) { return "/tmp/keysonscreen/config.toml", nil },
		loadSettings: func() (config.Settings, error) { return config.DefaultSettings(), nil },
		saveSettings: func(config.Settings) error { return nil },
		discover: func(probes, explicit []string) ([]*input.Device, error) {
			return nil, input.ErrNoDevices
		},
		openStore: func(config.Settings) (store.HistoryStore, error) {
			return &fakeHistoryStore{}, nil
		},
		runSession: func(context.Context, app.RunConfig) error { return nil },
		isTerminal: func() bool { return false },
		termWidth:  func() int { return 80 },
		logPath:    func() (string, error) { return "/tmp/keysonscreen/keysonscreen.log", nil },
		version:    "v-test",
	}
}

func sampleEntries() []history.Entry {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []history.Entry{
		{Labels: []keys.Label{{Name: "Left Ctrl", Modifier: &keys.ModifierInfo{Left: true, BaseType: "ctrl"}}, {Name: "C"}}, At: at},
		{Labels: []keys.Label{{Name: "A"}}, At: at.Add(-time.Minute)},
	}
}

func TestBuildCommandsRegistersAll(t *testing.T) {
	commands := buildCommands(testWiring(&bytes.Buffer{}))
	for _, name := range []string{"run", "devices", "keys", "history", "ignore", "divider", "config"} {
		if _, ok := commands[name]; !ok {
			t.Fatalf("missing command %q", name)
		}
	}
}

func TestRunCommandWiresSession(t *testing.T) {
	stdout := &bytes.Buffer{}
	wiring := testWiring(stdout)
	src := &fakeSource{path: "/dev/input/event4"}
	var gotProbes, gotExplicit []string
	wiring.discover = func(probes, explicit []string) ([]*input.Device, error) {
		gotProbes, gotExplicit = probes, explicit
		return []*input.Device{{Source: src, Name: "kbd", Matches: []string{"KEY_Q"}}}, nil
	}
	historyStore := &fakeHistoryStore{}
	wiring.openStore = func(config.Settings) (store.HistoryStore, error) { return historyStore, nil }
	var got app.RunConfig
	calls := 0
	wiring.runSession = func(_ context.Context, cfg app.RunConfig) error {
		calls++
		got = cfg
		return nil
	}

	if err := NewRunCommand(wiring).Run([]string{"--device", "/dev/input/event4"}); err != nil {
		t.Fatalf("expected run to succeed, got err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one session, got %d", calls)
	}
	if strings.Join(gotProbes, ",") != "KEY_Q,BTN_LEFT" || strings.Join(gotExplicit, ",") != "/dev/input/event4" {
		t.Fatalf("unexpected discover args: %v %v", gotProbes, gotExplicit)
	}
	if !got.Plain {
		t.Fatalf("expected plain mode when stdout is not a terminal")
	}
	if len(got.Sources) != 1 || got.Sources[0].Path() != "/dev/input/event4" {
		t.Fatalf("unexpected sources: %#v", got.Sources)
	}
	if got.Store == nil || got.Live == nil || got.ConfigPath == "" {
		t.Fatalf("expected store, live settings and config path: %#v", got)
	}
	if !historyStore.closed {
		t.Fatalf("expected history store closed after run")
	}
}

func TestRunCommandNoDevices(t *testing.T) {
	wiring := testWiring(&bytes.Buffer{})
	wiring.runSession = func(context.Context, app.RunConfig) error {
		t.Fatalf("session should not start")
		return nil
	}
	err := NewRunCommand(wiring).Run([]string{"--plain"})
	if !errors.Is(err, input.ErrNoDevices) {
		t.Fatalf("expected ErrNoDevices, got %v", err)
	}
	if !strings.Contains(err.Error(), "gpasswd") {
		t.Fatalf("expected remediation in error, got %q", err.Error())
	}
}

func TestRunCommandReportsSessionError(t *testing.T) {
	wiring := testWiring(&bytes.Buffer{})
	wiring.discover = func(probes, explicit []string) ([]*input.Device, error) {
		return []*input.Device{{Source: &fakeSource{path: "/dev/input/event1"}}}, nil
	}
	wiring.runSession = func(context.Context, app.RunConfig) error { return input.ErrNoDevicesLeft }
	if err := NewRunCommand(wiring).Run([]string{"--plain"}); !errors.Is(err, input.ErrNoDevicesLeft) {
		t.Fatalf("expected ErrNoDevicesLeft, got %v", err)
	}
}

func TestDevicesCommandPrintsTable(t *testing.T) {
	stdout := &bytes.Buffer{}
	src := &fakeSource{path: "/dev/input/event2"}
	discover := func(probes, explicit []string) ([]*input.Device, error) {
		return []*input.Device{{Source: src, Name: "USB Mouse", Matches: []string{"BTN_LEFT"}}}, nil
	}
	cmd := NewDevicesCommand(stdout, &bytes.Buffer{}, testWiring(stdout).loadSettings, discover)
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected devices to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "PATH") || !strings.Contains(out, "MATCHED") {
		t.Fatalf("expected header, got %q", out)
	}
	if !strings.Contains(out, "/dev/input/event2") || !strings.Contains(out, "USB Mouse") || !strings.Contains(out, "BTN_LEFT") {
		t.Fatalf("expected device row, got %q", out)
	}
	if src.closed != 1 {
		t.Fatalf("expected device closed once, got %d", src.closed)
	}
}

func TestKeysCommandListsNames(t *testing.T) {
	stdout := &bytes.Buffer{}
	cmd := NewKeysCommand(stdout, &bytes.Buffer{}, testWiring(stdout).loadSettings)
	if err := cmd.Run([]string{"--differentiate=false"}); err != nil {
		t.Fatalf("expected keys to succeed, got err=%v", err)
	}
	names := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	for _, want := range []string{"Ctrl", "Left Click", "Scroll Wheel", "A"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %q in key names", want)
		}
	}
	for _, name := range names {
		if name == "Left Ctrl" {
			t.Fatalf("sides should be merged")
		}
	}
}

func TestKeysCommandRejectsBadFlag(t *testing.T) {
	cmd := NewKeysCommand(&bytes.Buffer{}, &bytes.Buffer{}, testWiring(&bytes.Buffer{}).loadSettings)
	if err := cmd.Run([]string{"--differentiate=maybe"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHistoryCommandText(t *testing.T) {
	stdout := &bytes.Buffer{}
	historyStore := &fakeHistoryStore{entries: sampleEntries()}
	open := func(config.Settings) (store.HistoryStore, error) { return historyStore, nil }
	cmd := NewHistoryCommand(stdout, &bytes.Buffer{}, testWiring(stdout).loadSettings, open, nil)
	if err := cmd.Run([]string{"--limit", "1"}); err != nil {
		t.Fatalf("expected history to succeed, got err=%v", err)
	}
	if historyStore.limit != 1 {
		t.Fatalf("expected limit passed to store, got %d", historyStore.limit)
	}
	out := stdout.String()
	if !strings.Contains(out, "Left Ctrl + C") || strings.Contains(out, "  A\n") {
		t.Fatalf("unexpected output %q", out)
	}
	if !historyStore.closed {
		t.Fatalf("expected store closed")
	}
}

func TestHistoryCommandJSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	historyStore := &fakeHistoryStore{entries: sampleEntries()}
	open := func(config.Settings) (store.HistoryStore, error) { return historyStore, nil }
	cmd := NewHistoryCommand(stdout, &bytes.Buffer{}, testWiring(stdout).loadSettings, open, nil)
	if err := cmd.Run([]string{"--format", "json"}); err != nil {
		t.Fatalf("expected history to succeed, got err=%v", err)
	}
	var payload []historyEntryOutput
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(payload) != 2 || payload[0].Text != "Left Ctrl + C" || len(payload[0].Keys) != 2 {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestHistoryCommandClear(t *testing.T) {
	stdout := &bytes.Buffer{}
	historyStore := &fakeHistoryStore{entries: sampleEntries()}
	open := func(config.Settings) (store.HistoryStore, error) { return historyStore, nil }
	cmd := NewHistoryCommand(stdout, &bytes.Buffer{}, testWiring(stdout).loadSettings, open, nil)
	if err := cmd.Run([]string{"--clear"}); err != nil {
		t.Fatalf("expected clear to succeed, got err=%v", err)
	}
	if !historyStore.cleared {
		t.Fatalf("expected store cleared")
	}
}

func TestHistoryCommandRejectsFormat(t *testing.T) {
	cmd := NewHistoryCommand(&bytes.Buffer{}, &bytes.Buffer{}, testWiring(&bytes.Buffer{}).loadSettings, nil, nil)
	if err := cmd.Run([]string{"--format", "yaml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestIgnoreCommandAddRemove(t *testing.T) {
	stdout := &bytes.Buffer{}
	current := config.DefaultSettings()
	load := func() (config.Settings, error) { return current, nil }
	save := func(s config.Settings) error {
		current = s
		return nil
	}
	cmd := NewIgnoreCommand(stdout, &bytes.Buffer{}, load, save)

	if err := cmd.Run([]string{"add", "Left Ctrl + C", "Left Click"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if strings.Join(current.IgnoredKeys(), "|") != "Left Ctrl + C|Left Click" {
		t.Fatalf("unexpected ignored keys %v", current.IgnoredKeys())
	}
	stdout.Reset()
	if err := cmd.Run([]string{"remove", "Left Click"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "Left Ctrl + C" {
		t.Fatalf("unexpected list output %q", stdout.String())
	}
	if err := cmd.Run([]string{"add"}); err == nil {
		t.Fatalf("expected error for add without names")
	}
	if err := cmd.Run([]string{"toggle"}); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestDividerCommandSetsAndResets(t *testing.T) {
	stdout := &bytes.Buffer{}
	current := config.DefaultSettings()
	saves := 0
	load := func() (config.Settings, error) { return current, nil }
	save := func(s config.Settings) error {
		current = s
		saves++
		return nil
	}
	cmd := NewDividerCommand(stdout, &bytes.Buffer{}, load, save)

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != `" + "` || saves != 0 {
		t.Fatalf("unexpected print output %q (saves %d)", stdout.String(), saves)
	}
	stdout.Reset()
	if err := cmd.Run([]string{" - "}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if current.Divider() != " - " || current.KeyOptions().Divider != " - " {
		t.Fatalf("divider not saved: %q", current.Divider())
	}
	if err := cmd.Run([]string{"--reset"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if current.Divider() != " + " || saves != 2 {
		t.Fatalf("expected default divider after reset, got %q (saves %d)", current.Divider(), saves)
	}
	for _, args := range [][]string{{""}, {"a", "b"}, {"--reset", "x"}} {
		if err := cmd.Run(args); err == nil {
			t.Fatalf("expected error for %q", args)
		}
	}
}

func TestConfigCommandDefaultsTOML(t *testing.T) {
	stdout := &bytes.Buffer{}
	wiring := testWiring(stdout)
	wiring.loadSettings = func() (config.Settings, error) {
		return config.Settings{}, errors.New("should not load")
	}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{}, wiring.configPath, wiring.loadSettings)
	if err := cmd.Run([]string{"--default", "--format", "toml"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	out := stdout.String()
	for _, want := range []string{"[display]", "max_width = 60", "interval_ms = 50", "bbolt"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConfigCommandJSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	wiring := testWiring(stdout)
	wiring.loadSettings = func() (config.Settings, error) {
		return config.DefaultSettings().WithDifferentiate(false), nil
	}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{}, wiring.configPath, wiring.loadSettings)
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	var payload configOutput
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if payload.Display.Differentiate || payload.ConfigPath != "/tmp/keysonscreen/config.toml" {
		t.Fatalf("unexpected payload %#v", payload)
	}
}
