package config

import (
	"errors"
	"os"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"keysonscreen/internal/history"
	"keysonscreen/internal/keys"
)

const (
	BackendBbolt = "bbolt"
	BackendFile  = "file"

	defaultColor          = "15"
	defaultMaxWidth       = 60
	defaultFadeInterval   = 50 * time.Millisecond
	defaultFadeStep       = 0.0125
	defaultLogLevel       = "info"
	minFadeInterval       = 10 * time.Millisecond
	defaultHistoryBackend = BackendBbolt
)

type Settings struct {
	Display DisplayConfig `toml:"display"`
	Fade    FadeConfig    `toml:"fade"`
	History HistoryConfig `toml:"history"`
	Devices DevicesConfig `toml:"devices"`
	Logging LoggingConfig `toml:"logging"`
}

type DisplayConfig struct {
	Differentiate *bool    `toml:"differentiate"`
	Divider       *string  `toml:"divider"`
	IgnoredKeys   []string `toml:"ignored_keys"`
	Color         string   `toml:"color"`
	MaxWidth      int      `toml:"max_width"`
}

type FadeConfig struct {
	Enabled    *bool   `toml:"enabled"`
	IntervalMS int     `toml:"interval_ms"`
	Step       float64 `toml:"step"`
}

type HistoryConfig struct {
	Enabled  *bool  `toml:"enabled"`
	Capacity int    `toml:"capacity"`
	Persist  *bool  `toml:"persist"`
	Backend  string `toml:"backend"`
}

type DevicesConfig struct {
	Probes []string `toml:"probes"`
	Paths  []string `toml:"paths"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func DefaultSettings() Settings {
	return Settings{
		Display: DisplayConfig{
			Differentiate: boolPtr(true),
			Divider:       stringPtr(keys.DefaultDivider),
			IgnoredKeys:   []string{},
			Color:         defaultColor,
			MaxWidth:      defaultMaxWidth,
		},
		Fade: FadeConfig{
			Enabled:    boolPtr(true),
			IntervalMS: int(defaultFadeInterval / time.Millisecond),
			Step:       defaultFadeStep,
		},
		History: HistoryConfig{
			Enabled:  boolPtr(true),
			Capacity: history.DefaultCapacity,
			Persist:  boolPtr(true),
			Backend:  defaultHistoryBackend,
		},
		Devices: DevicesConfig{
			Probes: []string{"KEY_Q", "BTN_LEFT"},
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
		},
	}
}

// Load reads the settings file. A missing or empty file yields defaults.
func Load() (Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return Settings{}, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (Settings, error) {
	cfg := DefaultSettings()
	if err := readTOML(path, &cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// KeyOptions returns the options passed to the key tracker.
func (s Settings) KeyOptions() keys.Options {
	return keys.Options{
		DifferentiateSides: s.Differentiate(),
		Divider:            s.Divider(),
		Ignore:             s.IgnoredKeys(),
	}
}

func (s Settings) Differentiate() bool {
	return boolOr(s.Display.Differentiate, true)
}

// Divider keeps surrounding whitespace; only an unset or empty divider falls
// back to the default.
func (s Settings) Divider() string {
	if s.Display.Divider == nil || *s.Display.Divider == "" {
		return keys.DefaultDivider
	}
	return *s.Display.Divider
}

func (s Settings) IgnoredKeys() []string {
	return normalizedList(s.Display.IgnoredKeys)
}

func (s Settings) Color() string {
	color := strings.TrimSpace(s.Display.Color)
	if color == "" {
		return defaultColor
	}
	return color
}

func (s Settings) MaxWidth() int {
	if s.Display.MaxWidth <= 0 {
		return defaultMaxWidth
	}
	return s.Display.MaxWidth
}

func (s Settings) FadeEnabled() bool {
	return boolOr(s.Fade.Enabled, true)
}

func (s Settings) FadeInterval() time.Duration {
	interval := time.Duration(s.Fade.IntervalMS) * time.Millisecond
	if interval <= 0 {
		return defaultFadeInterval
	}
	return max(interval, minFadeInterval)
}

func (s Settings) FadeStep() float64 {
	if s.Fade.Step <= 0 || s.Fade.Step > 1 {
		return defaultFadeStep
	}
	return s.Fade.Step
}

func (s Settings) HistoryEnabled() bool {
	return boolOr(s.History.Enabled, true)
}

func (s Settings) HistoryCapacity() int {
	return history.ClampCapacity(s.History.Capacity)
}

func (s Settings) HistoryPersist() bool {
	return boolOr(s.History.Persist, true)
}

func (s Settings) HistoryBackend() string {
	switch backend := strings.ToLower(strings.TrimSpace(s.History.Backend)); backend {
	case BackendFile:
		return BackendFile
	case "", BackendBbolt:
		return BackendBbolt
	default:
		return backend
	}
}

func (s Settings) DeviceProbes() []string {
	probes := normalizedList(s.Devices.Probes)
	if len(probes) == 0 {
		return []string{"KEY_Q", "BTN_LEFT"}
	}
	return probes
}

func (s Settings) DevicePaths() []string {
	return normalizedList(s.Devices.Paths)
}

func (s Settings) LogLevel() string {
	level := strings.TrimSpace(s.Logging.Level)
	if level == "" {
		return defaultLogLevel
	}
	return level
}

// WithDifferentiate returns a copy with the left/right setting changed.
func (s Settings) WithDifferentiate(on bool) Settings {
	s.Display.Differentiate = boolPtr(on)
	return s
}

func (s Settings) WithFade(on bool) Settings {
	s.Fade.Enabled = boolPtr(on)
	return s
}

func (s Settings) WithHistoryPane(on bool) Settings {
	s.History.Enabled = boolPtr(on)
	return s
}

// WithDivider returns a copy joining labels with divider. An empty divider
// restores the default.
func (s Settings) WithDivider(divider string) Settings {
	if divider == "" {
		divider = keys.DefaultDivider
	}
	s.Display.Divider = stringPtr(divider)
	return s
}

// WithIgnored returns a copy whose ignore list has add appended and remove
// dropped.
func (s Settings) WithIgnored(add, remove []string) Settings {
	list := slices.Clone(s.IgnoredKeys())
	list = slices.DeleteFunc(list, func(value string) bool {
		return slices.Contains(remove, value)
	})
	list = append(list, add...)
	s.Display.IgnoredKeys = normalizedList(list)
	if s.Display.IgnoredKeys == nil {
		s.Display.IgnoredKeys = []string{}
	}
	return s
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func normalizedList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func boolPtr(v bool) *bool {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
