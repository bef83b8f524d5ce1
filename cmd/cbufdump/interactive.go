package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/cbuf"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserModel struct {
	err      error
	filename string
	structs  []cbuf.StructInfo
	visible  []int
	filter   textinput.Model
	selected int
	state    browserState
	loaded   bool
}

type browserState int

const (
	stateList browserState = iota
	stateDetail
)

type schemaLoadedMsg struct {
	err     error
	structs []cbuf.StructInfo
}

func newBrowserModel(filename string) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter structs"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &browserModel{
		filename: filename,
		filter:   ti,
		state:    stateList,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return tea.Batch(m.loadSchema, textinput.Blink)
}

func (m *browserModel) loadSchema() tea.Msg {
	text, err := os.ReadFile(m.filename)
	if err != nil {
		return schemaLoadedMsg{err: err}
	}
	p := cbuf.New()
	if err := p.ParseMetadata(string(text)); err != nil {
		return schemaLoadedMsg{err: err}
	}
	infos, err := p.Metadata()
	if err != nil {
		return schemaLoadedMsg{err: err}
	}
	return schemaLoadedMsg{structs: infos}
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, info := range m.structs {
		if q == "" || strings.Contains(strings.ToLower(info.Name), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateList:
				if len(m.visible) > 0 {
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateList
			}
			return m, nil

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
				return m, nil
			}
			return m, tea.Quit
		}

	case schemaLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.structs = msg.structs
		m.applyFilter()
		return m, nil
	}

	if m.state == stateList {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if !m.loaded {
		return "Loading schema..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("cbuf schema"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateList:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for row, i := range m.visible {
			line := m.formatStruct(m.structs[i])
			if row == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter details • esc quit"))

	case stateDetail:
		info := m.structs[m.visible[m.selected]]
		b.WriteString(nameStyle.Render(info.Name))
		fmt.Fprintf(&b, "  size=%d hash=0x%016X naked=%t bounded=%t compact=%t\n\n",
			info.Size, info.Hash, info.Naked, info.Simple, info.HasCompact)
		for _, f := range info.Fields {
			fmt.Fprintf(&b, "  %-24s %s", f.Name, typeStyle.Render(fieldType(f)))
			if f.Default != nil {
				fmt.Fprintf(&b, " = %v", f.Default)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • ctrl+c quit"))
	}

	return b.String()
}

func (m *browserModel) formatStruct(info cbuf.StructInfo) string {
	return fmt.Sprintf("%s %s", nameStyle.Render(info.Name),
		typeStyle.Render(fmt.Sprintf("(%d bytes, %d fields)", info.Size, len(info.Fields))))
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newBrowserModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
