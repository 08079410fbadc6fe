package main

import (
	"flag"
	"fmt"
	"io"
	"slices"

	"keysonscreen/internal/config"
	"keysonscreen/internal/input"
	"keysonscreen/internal/keys"
)

type KeysCommand struct {
	stdout       io.Writer
	stderr       io.Writer
	loadSettings func() (config.Settings, error)
}

func NewKeysCommand(stdout, stderr io.Writer, loadSettings func() (config.Settings, error)) *KeysCommand {
	return &KeysCommand{stdout: stdout, stderr: stderr, loadSettings: loadSettings}
}

// Run prints the names usable in the ignore list.
func (c *KeysCommand) Run(args []string) error {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	differentiate := fs.String("differentiate", "", "left/right modifier names: true|false (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sides, err := c.resolveDifferentiate(*differentiate)
	if err != nil {
		return err
	}
	for _, name := range keyNames(sides) {
		fmt.Fprintln(c.stdout, name)
	}
	return nil
}

func (c *KeysCommand) resolveDifferentiate(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		settings, err := c.loadSettings()
		if err != nil {
			return false, fmt.Errorf("load config: %w", err)
		}
		return settings.Differentiate(), nil
	default:
		return false, fmt.Errorf("invalid differentiate value %q: must be true or false", raw)
	}
}

func keyNames(differentiateSides bool) []string {
	ids := input.KnownIdentifiers()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, keys.Resolve(id, differentiateSides).Name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}
