package app

import (
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"keysonscreen/internal/history"
	"keysonscreen/internal/keys"
)

func TestBuildStyleConfigDisablesDocumentOuterMargins(t *testing.T) {
	for _, dark := range []bool{true, false} {
		cfg := buildStyleConfig(dark)
		if cfg.Document.StylePrimitive.BlockPrefix != "" {
			t.Fatalf("expected empty document block prefix, got %q", cfg.Document.StylePrimitive.BlockPrefix)
		}
		if cfg.Document.StylePrimitive.BlockSuffix != "" {
			t.Fatalf("expected empty document block suffix, got %q", cfg.Document.StylePrimitive.BlockSuffix)
		}
		if cfg.Document.Margin == nil || *cfg.Document.Margin != 0 {
			t.Fatalf("expected document margin 0")
		}
	}
}

func TestHistoryMarkdownListsEntriesNewestFirst(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 45, 0, time.Local)
	entries := []history.Entry{
		{Labels: []keys.Label{{Name: "Left Ctrl"}, {Name: "C"}}, At: at},
		{Labels: []keys.Label{{Name: "A"}}, At: at.Add(-time.Second)},
	}
	md := historyMarkdown(entries, " + ")
	if !strings.Contains(md, "1. Left Ctrl + C *(12:30:45)*") {
		t.Fatalf("unexpected first item in %q", md)
	}
	if !strings.Contains(md, "2. A *(12:30:44)*") {
		t.Fatalf("unexpected second item in %q", md)
	}
}

func TestHistoryMarkdownEmpty(t *testing.T) {
	md := historyMarkdown(nil, " + ")
	if !strings.Contains(md, "No key combinations recorded") {
		t.Fatalf("unexpected empty output %q", md)
	}
}

func TestRenderHistoryMarkdownFitsWidth(t *testing.T) {
	entries := []history.Entry{{Labels: []keys.Label{{Name: "Left Shift"}, {Name: "Enter"}}, At: time.Now()}}
	out := RenderHistoryMarkdown(entries, " + ", 40, true)
	if !strings.Contains(xansi.Strip(out), "Left Shift + Enter") {
		t.Fatalf("expected rendered entry, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := xansi.StringWidth(line); w > 40 {
			t.Fatalf("line exceeds width: %d %q", w, line)
		}
	}
}

func TestEscapeMarkdownLeadingMarkers(t *testing.T) {
	if got := escapeMarkdown("+ A"); got != `\+ A` {
		t.Fatalf("unexpected escape %q", got)
	}
	if got := escapeMarkdown("1. A"); got != `\1. A` {
		t.Fatalf("unexpected escape %q", got)
	}
}
