package main

import (
	"fmt"
	"os"
)

const usageText = `keysonscreen shows the keys you press.

Usage:
  keysonscreen <command> [flags]

Commands:
  run       show pressed keys (terminal UI, or log lines with --plain)
  devices   list the input devices that would be read
  keys      list the display name of every known key and button
  history   print recorded key combinations
  ignore    list, add or remove ignored combinations
  divider   print or set the text placed between key names
  config    print configuration (effective or defaults)
  version   print the build version
  help      show help

Run flags:
  --plain            print one line per combination instead of the UI
  --device PATH      read this device (repeatable, skips probing)
  --log-level LEVEL  debug|info|warn|error

Examples:
  keysonscreen run
  keysonscreen history --limit 20 --format markdown
  keysonscreen ignore add "Left Ctrl + C"
  keysonscreen divider " - "
  keysonscreen config --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"run"}
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "-v", "--version", "version":
		fmt.Fprintln(wiring.stdout, wiring.version)
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
