package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"keysonscreen/internal/config"
)

type DividerCommand struct {
	stdout       io.Writer
	stderr       io.Writer
	loadSettings func() (config.Settings, error)
	saveSettings func(config.Settings) error
}

func NewDividerCommand(stdout, stderr io.Writer, loadSettings func() (config.Settings, error), saveSettings func(config.Settings) error) *DividerCommand {
	return &DividerCommand{
		stdout:       stdout,
		stderr:       stderr,
		loadSettings: loadSettings,
		saveSettings: saveSettings,
	}
}

// Run prints the divider, or sets it when a value is given. The value is
// kept as is, surrounding spaces included.
func (c *DividerCommand) Run(args []string) error {
	fs := flag.NewFlagSet("divider", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	reset := fs.Bool("reset", false, "restore the default divider")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) > 1 {
		return errors.New("divider takes a single value; quote it to keep spaces")
	}
	if *reset && len(rest) > 0 {
		return errors.New("--reset does not take a value")
	}
	if len(rest) == 1 && rest[0] == "" {
		return errors.New("divider must not be empty")
	}

	settings, err := c.loadSettings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	switch {
	case *reset:
		settings = settings.WithDivider("")
	case len(rest) == 1:
		settings = settings.WithDivider(rest[0])
	default:
		fmt.Fprintln(c.stdout, strconv.Quote(settings.Divider()))
		return nil
	}
	if err := c.saveSettings(settings); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintln(c.stdout, strconv.Quote(settings.Divider()))
	return nil
}
