package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"keysonscreen/internal/config"
	"keysonscreen/internal/input"
)

type DevicesCommand struct {
	stdout       io.Writer
	stderr       io.Writer
	loadSettings func() (config.Settings, error)
	discover     func(probes, explicit []string) ([]*input.Device, error)
}

func NewDevicesCommand(stdout, stderr io.Writer, loadSettings func() (config.Settings, error), discover func(probes, explicit []string) ([]*input.Device, error)) *DevicesCommand {
	return &DevicesCommand{
		stdout:       stdout,
		stderr:       stderr,
		loadSettings: loadSettings,
		discover:     discover,
	}
}

func (c *DevicesCommand) Run(args []string) error {
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var probes stringList
	fs.Var(&probes, "probe", "key or button name a device must report (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := c.loadSettings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(probes) == 0 {
		probes = settings.DeviceProbes()
	}
	devices, err := c.discover(probes, settings.DevicePaths())
	if err != nil {
		return err
	}
	defer input.CloseAll(devices)
	printDevices(c.stdout, devices)
	return nil
}

func printDevices(output io.Writer, devices []*input.Device) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "PATH\tNAME\tMATCHED")
	for _, device := range devices {
		matched := "-"
		if len(device.Matches) > 0 {
			matched = strings.Join(device.Matches, ",")
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", device.Path(), device.Name, matched)
	}
	_ = writer.Flush()
}
