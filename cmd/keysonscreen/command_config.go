package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"keysonscreen/internal/config"
)

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type ConfigCommand struct {
	stdout       io.Writer
	stderr       io.Writer
	configPath   func() (string, error)
	loadSettings func() (config.Settings, error)
}

type configOutput struct {
	ConfigPath string                 `json:"config_path,omitempty" toml:"config_path,omitempty"`
	Display    effectiveDisplayConfig `json:"display" toml:"display"`
	Fade       effectiveFadeConfig    `json:"fade" toml:"fade"`
	History    effectiveHistoryConfig `json:"history" toml:"history"`
	Devices    effectiveDevicesConfig `json:"devices" toml:"devices"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging"`
}

type effectiveDisplayConfig struct {
	Differentiate bool     `json:"differentiate" toml:"differentiate"`
	Divider       string   `json:"divider" toml:"divider"`
	IgnoredKeys   []string `json:"ignored_keys" toml:"ignored_keys"`
	Color         string   `json:"color" toml:"color"`
	MaxWidth      int      `json:"max_width" toml:"max_width"`
}

type effectiveFadeConfig struct {
	Enabled    bool    `json:"enabled" toml:"enabled"`
	IntervalMS int64   `json:"interval_ms" toml:"interval_ms"`
	Step       float64 `json:"step" toml:"step"`
}

type effectiveHistoryConfig struct {
	Enabled  bool   `json:"enabled" toml:"enabled"`
	Capacity int    `json:"capacity" toml:"capacity"`
	Persist  bool   `json:"persist" toml:"persist"`
	Backend  string `json:"backend" toml:"backend"`
}

type effectiveDevicesConfig struct {
	Probes []string `json:"probes" toml:"probes"`
	Paths  []string `json:"paths" toml:"paths"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

func NewConfigCommand(stdout, stderr io.Writer, configPath func() (string, error), loadSettings func() (config.Settings, error)) *ConfigCommand {
	return &ConfigCommand{
		stdout:       stdout,
		stderr:       stderr,
		configPath:   configPath,
		loadSettings: loadSettings,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}

	settings := config.DefaultSettings()
	if !*defaults {
		settings, err = c.loadSettings()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	out := effectiveConfig(settings)
	if path, err := c.configPath(); err == nil {
		out.ConfigPath = path
	}
	return writeConfigOutput(c.stdout, resolvedFormat, out)
}

func effectiveConfig(settings config.Settings) configOutput {
	return configOutput{
		Display: effectiveDisplayConfig{
			Differentiate: settings.Differentiate(),
			Divider:       settings.Divider(),
			IgnoredKeys:   nonNil(settings.IgnoredKeys()),
			Color:         settings.Color(),
			MaxWidth:      settings.MaxWidth(),
		},
		Fade: effectiveFadeConfig{
			Enabled:    settings.FadeEnabled(),
			IntervalMS: settings.FadeInterval().Milliseconds(),
			Step:       settings.FadeStep(),
		},
		History: effectiveHistoryConfig{
			Enabled:  settings.HistoryEnabled(),
			Capacity: settings.HistoryCapacity(),
			Persist:  settings.HistoryPersist(),
			Backend:  settings.HistoryBackend(),
		},
		Devices: effectiveDevicesConfig{
			Probes: nonNil(settings.DeviceProbes()),
			Paths:  nonNil(settings.DevicePaths()),
		},
		Logging: effectiveLoggingConfig{
			Level: settings.LogLevel(),
		},
	}
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
