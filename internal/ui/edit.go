package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/modedeck/internal/modes"
)

// fieldEdit is an in-progress text edit of one optional field. id is the
// entry the editor was opened on; a snapshot replacing it voids the edit.
type fieldEdit struct {
	mode  modes.Type
	index int
	id    modes.ID
	field string
	input textinput.Model
}

func (m *Model) toggleActive() {
	mode := m.currentMode()
	if m.dispatcher == nil {
		return
	}
	m.report(m.dispatcher.Bool(mode, modes.FieldActive).Toggle(m.selected[mode]))
	m.refresh()
}

func (m Model) beginEdit(field string) (tea.Model, tea.Cmd) {
	mode := m.currentMode()
	if m.registry == nil || m.dispatcher == nil {
		return m, nil
	}
	if _, ok := m.registry.Lookup(mode, field); !ok {
		m.status = fmt.Sprintf("%s has no %s", mode, field)
		return m, nil
	}
	index := m.selected[mode]
	entry, ok := m.store.Entry(mode, index)
	if !ok {
		m.status = fmt.Sprintf("%s has no entry %d", mode, index)
		return m, nil
	}

	ti := textinput.New()
	ti.Prompt = field + ": "
	ti.Placeholder = "empty clears"
	ti.CharLimit = 255
	if v, ok := entry.Value(field); ok {
		ti.SetValue(fmt.Sprint(v))
	}
	if field == modes.FieldListenPort {
		ti.CharLimit = 5
	}
	cmd := ti.Focus()

	m.edit = &fieldEdit{mode: mode, index: index, id: entry.ID, field: field, input: ti}
	m.status = ""
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.savePrefs()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.edit = nil
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		edit := m.edit
		m.edit = nil
		if entry, ok := m.store.Entry(edit.mode, edit.index); !ok || entry.ID != edit.id {
			m.status = fmt.Sprintf("%s[%d] changed while editing; edit discarded", edit.mode, edit.index)
			m.refresh()
			return m, nil
		}
		m.report(m.commit(edit))
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.edit.input, cmd = m.edit.input.Update(msg)
	return m, cmd
}

// commit sends the edited value. An empty input clears the field.
func (m Model) commit(edit *fieldEdit) error {
	raw := strings.TrimSpace(edit.input.Value())
	switch edit.field {
	case modes.FieldListenPort:
		port := m.dispatcher.Int(edit.mode, edit.field)
		if raw == "" {
			return port.Clear(edit.index)
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 65535 {
			return fmt.Errorf("invalid port %q", raw)
		}
		return port.Set(edit.index, n)
	default:
		host := m.dispatcher.String(edit.mode, edit.field)
		if raw == "" {
			return host.Clear(edit.index)
		}
		return host.Set(edit.index, raw)
	}
}

// report shows err in the footer; nil clears it.
func (m *Model) report(err error) {
	if err == nil {
		m.status = ""
		return
	}
	m.status = err.Error()
}
