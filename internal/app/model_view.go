package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	sections := []string{m.renderCombination()}
	if m.settings.HistoryEnabled() {
		sections = append(sections, m.renderHistoryPane())
	}
	sections = append(sections, m.renderStatus(), m.fitLine(helpStyle.Render(m.keys.helpLine())))
	return strings.Join(sections, "\n")
}

func (m *Model) renderCombination() string {
	text := fitText(m.current.Text, m.settings.MaxWidth())
	if text == "" {
		return comboStyle.Render(helpStyle.Render("press any key"))
	}
	if m.opacity <= 0 {
		return comboStyle.Render(strings.Repeat(" ", runewidth.StringWidth(text)))
	}
	style := comboStyle.Foreground(fadeColor(m.settings.Color(), m.opacity))
	return style.Render(text)
}

func (m *Model) renderHistoryPane() string {
	title := headerStyle.Render(fmt.Sprintf(historyTitle, m.log.Capacity()))
	return historyPaneStyle.Render(title + "\n" + m.history.View())
}

func (m *Model) renderStatus() string {
	parts := []string{fmt.Sprintf("%d device(s)", m.devices)}
	if m.log.Paused() {
		parts = append(parts, pausedStyle.Render("history paused"))
	}
	if !m.settings.Differentiate() {
		parts = append(parts, "sides merged")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	line := statusStyle.Render(strings.Join(parts, " · "))
	if m.lastErr != "" {
		line += "  " + statusErrorStyle.Render(m.lastErr)
	}
	return m.fitLine(line)
}

func (m *Model) fitLine(line string) string {
	if m.width <= 0 {
		return line
	}
	return xansi.Truncate(line, m.width, ellipsis)
}

// fitText shortens text to at most width terminal cells.
func fitText(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, ellipsis)
}
