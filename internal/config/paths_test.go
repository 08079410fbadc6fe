package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, ".keysonscreen") {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	cases := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{name: "config", fn: ConfigPath, want: "config.toml"},
		{name: "history db", fn: HistoryDBPath, want: "history.db"},
		{name: "history file", fn: HistoryFilePath, want: "history.json"},
		{name: "log", fn: LogPath, want: "keysonscreen.log"},
	}
	for _, tc := range cases {
		path, err := tc.fn()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if path != filepath.Join(dataDir, tc.want) {
			t.Fatalf("%s: unexpected path %s", tc.name, path)
		}
	}
}
