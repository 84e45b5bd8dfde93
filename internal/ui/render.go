package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/modedeck/internal/modes"
	"github.com/five82/modedeck/internal/state"
)

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderEntries())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	status, detail := linkStatus(m.snap.link)

	parts := []string{
		styles.Logo.Render("modedeck"),
		styles.StateStyle(status).Render(status),
	}
	if detail != "" {
		parts = append(parts, styles.MutedText.Render(detail))
	}
	if err := m.snap.link.LastError; err != nil {
		parts = append(parts, styles.DangerText.Render(truncate(err.Error(), 60)))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// linkStatus names the backend reachability for the header badge.
func linkStatus(link state.Link) (string, string) {
	switch {
	case link.LastUpdated.IsZero():
		return "connecting", ""
	case link.IsOffline():
		return "offline", fmt.Sprintf("%d failed polls", link.ConsecutiveFailures)
	case link.LastError != nil:
		return "connecting", "retrying"
	default:
		return "online", "updated " + link.LastUpdated.Format(time.TimeOnly)
	}
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(m.modeOrder))
	for i, t := range m.modeOrder {
		label := fmt.Sprintf("%s %s", t, stateGlyph(m.snap.lists[t].State))
		if i == m.modeIdx {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func stateGlyph(s state.SyncState) string {
	switch s {
	case state.Synced:
		return "●"
	case state.PendingLocalEdit:
		return "◐"
	default:
		return "○"
	}
}

func (m Model) renderEntries() string {
	styles := m.theme.Styles()
	mode := m.currentMode()
	list := m.snap.lists[mode]

	var b strings.Builder
	b.WriteString(styles.StateStyle(list.State.String()).Render(list.State.String()))
	if !list.LastSynced.IsZero() {
		b.WriteString(styles.FaintText.Render("  last snapshot " + list.LastSynced.Format(time.TimeOnly)))
	}
	b.WriteString("\n\n")

	if len(list.Entries) == 0 {
		b.WriteString(styles.MutedText.Render("  no entries"))
		b.WriteString("\n")
	}
	for i, e := range list.Entries {
		line := renderEntryLine(mode, i, e)
		if i == m.selected[mode] {
			b.WriteString(styles.Selected.Width(m.width).Render(line))
		} else if e.Bool(modes.FieldActive) {
			b.WriteString(styles.Text.Render(line))
		} else {
			b.WriteString(styles.MutedText.Render(line))
		}
		b.WriteString("\n")
	}

	if m.edit != nil {
		b.WriteString("\n")
		b.WriteString(m.edit.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

func renderEntryLine(mode modes.Type, index int, e modes.Entry) string {
	check := "[ ]"
	if e.Bool(modes.FieldActive) {
		check = "[x]"
	}
	return fmt.Sprintf(" %2d %s %s", index, check, modes.FormatSpec(mode, e))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var msg string
	switch {
	case m.status != "":
		msg = styles.WarningText.Render(m.status)
	case m.snap.failure != nil:
		f := m.snap.failure
		msg = styles.DangerText.Render(fmt.Sprintf("%s[%d].%s not applied: %s",
			f.Request.Mode, f.Request.Index, f.Request.Field, truncate(f.Err.Error(), 60)))
	default:
		hints := make([]string, 0, len(m.keys.ShortHelp()))
		for _, k := range m.keys.ShortHelp() {
			h := k.Help()
			hints = append(hints, h.Key+" "+strings.ToLower(h.Desc))
		}
		msg = strings.Join(hints, " · ")
	}
	return styles.Footer.Width(m.width).Render(msg)
}

// truncate cuts s to n terminal cells.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "…")
}
