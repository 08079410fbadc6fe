package app

import (
	"time"

	"keysonscreen/internal/config"
	"keysonscreen/internal/history"
	"keysonscreen/internal/keys"
)

type snapshotMsg struct {
	snap keys.Snapshot
}

type settingsMsg struct {
	settings config.Settings
}

type fadeTickMsg struct {
	at time.Time
}

type deviceLostMsg struct {
	path string
}

type readerStoppedMsg struct {
	err error
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

type historyPersistedMsg struct {
	err error
}

type settingsSavedMsg struct {
	err error
}

type clipboardCopiedMsg struct {
	method clipboardMethod
	count  int
	err    error
}
