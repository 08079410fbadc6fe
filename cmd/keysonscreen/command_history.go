package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"keysonscreen/internal/app"
	"keysonscreen/internal/config"
	"keysonscreen/internal/history"
	"keysonscreen/internal/store"
)

const (
	historyFormatText     = "text"
	historyFormatJSON     = "json"
	historyFormatMarkdown = "markdown"
)

type HistoryCommand struct {
	stdout       io.Writer
	stderr       io.Writer
	loadSettings func() (config.Settings, error)
	openStore    func(config.Settings) (store.HistoryStore, error)
	termWidth    func() int
}

type historyEntryOutput struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
	Keys []string  `json:"keys"`
}

func NewHistoryCommand(stdout, stderr io.Writer, loadSettings func() (config.Settings, error), openStore func(config.Settings) (store.HistoryStore, error), termWidth func() int) *HistoryCommand {
	return &HistoryCommand{
		stdout:       stdout,
		stderr:       stderr,
		loadSettings: loadSettings,
		openStore:    openStore,
		termWidth:    termWidth,
	}
}

func (c *HistoryCommand) Run(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	limit := fs.Int("limit", 0, "number of entries to print (0 for all)")
	format := fs.String("format", historyFormatText, "output format: text|json|markdown")
	clearHistory := fs.Bool("clear", false, "delete recorded history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedFormat, err := resolveHistoryFormat(*format)
	if err != nil {
		return err
	}

	settings, err := c.loadSettings()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	historyStore, err := c.openStore(settings)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer historyStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if *clearHistory {
		if err := historyStore.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, "history cleared")
		return nil
	}
	entries, err := historyStore.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	return c.write(resolvedFormat, entries, settings.Divider())
}

func (c *HistoryCommand) write(format string, entries []history.Entry, divider string) error {
	switch format {
	case historyFormatJSON:
		out := make([]historyEntryOutput, 0, len(entries))
		for _, entry := range entries {
			names := make([]string, len(entry.Labels))
			for i, label := range entry.Labels {
				names[i] = label.Name
			}
			out = append(out, historyEntryOutput{Text: entry.Text(divider), At: entry.At, Keys: names})
		}
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case historyFormatMarkdown:
		width := 80
		if c.termWidth != nil {
			width = c.termWidth()
		}
		_, err := fmt.Fprintln(c.stdout, app.RenderHistoryMarkdown(entries, divider, width, true))
		return err
	default:
		var b strings.Builder
		for _, entry := range entries {
			fmt.Fprintf(&b, "%s  %s\n", entry.At.Local().Format(time.DateTime), entry.Text(divider))
		}
		_, err := io.WriteString(c.stdout, b.String())
		return err
	}
}

func resolveHistoryFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", historyFormatText:
		return historyFormatText, nil
	case historyFormatJSON:
		return historyFormatJSON, nil
	case historyFormatMarkdown, "md":
		return historyFormatMarkdown, nil
	default:
		return "", errors.New("invalid format: must be text, json, or markdown")
	}
}
