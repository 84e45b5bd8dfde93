package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/modedeck/internal/logtail"
)

const logFetchLimit = 400

type logLinesMsg struct {
	lines []string
	err   error
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logFetchLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

// logHeight leaves room for header, tabs and footer.
func (m Model) logHeight() int {
	return max(m.height-5, 1)
}

func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	atBottom := m.logViewport.AtBottom()
	m.logViewport.SetContent(m.renderLogLines())
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogLines() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render(m.logErr.Error())
	}
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("no log output yet (" + m.logFile + ")")
	}
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		out[i] = styles.LevelStyle(logtail.Level(line)).Render(line)
	}
	return strings.Join(out, "\n")
}

func (m Model) renderLogs() string {
	return m.logViewport.View()
}
