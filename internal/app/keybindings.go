package app

import (
	"strings"

	"charm.land/bubbles/v2/key"
)

type keyMap struct {
	Quit          key.Binding
	Pause         key.Binding
	Differentiate key.Binding
	Fade          key.Binding
	HistoryPane   key.Binding
	Copy          key.Binding
	Clear         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Pause: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "pause history"),
		),
		Differentiate: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "left/right"),
		),
		Fade: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "fade"),
		),
		HistoryPane: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "history"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Quit, k.Pause, k.Differentiate, k.Fade, k.HistoryPane, k.Copy, k.Clear}
}

func (k keyMap) helpLine() string {
	parts := make([]string, 0, len(k.bindings()))
	for _, binding := range k.bindings() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
