package main

import (
	"errors"
	"fmt"
	"io"

	"keysonscreen/internal/config"
)

type IgnoreCommand struct {
	stdout       io.Writer
	stderr       io.Writer
	loadSettings func() (config.Settings, error)
	saveSettings func(config.Settings) error
}

func NewIgnoreCommand(stdout, stderr io.Writer, loadSettings func() (config.Settings, error), saveSettings func(config.Settings) error) *IgnoreCommand {
	return &IgnoreCommand{
		stdout:       stdout,
		stderr:       stderr,
		loadSettings: loadSettings,
		saveSettings: saveSettings,
	}
}

// Run handles "ignore list", "ignore add NAME..." and "ignore remove NAME...".
// Names are full combinations ("Left Ctrl + C") or single key names.
func (c *IgnoreCommand) Run(args []string) error {
	action := "list"
	if len(args) > 0 {
		action = args[0]
		args = args[1:]
	}
	settings, err := c.loadSettings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch action {
	case "list", "ls":
	case "add":
		if len(args) == 0 {
			return errors.New("ignore add requires at least one name")
		}
		settings = settings.WithIgnored(args, nil)
	case "remove", "rm":
		if len(args) == 0 {
			return errors.New("ignore remove requires at least one name")
		}
		settings = settings.WithIgnored(nil, args)
	default:
		return fmt.Errorf("unknown ignore action %q: must be list, add, or remove", action)
	}

	if action != "list" && action != "ls" {
		if err := c.saveSettings(settings); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}
	for _, name := range settings.IgnoredKeys() {
		fmt.Fprintln(c.stdout, name)
	}
	return nil
}
