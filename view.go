package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle  = lipgloss.NewStyle().Reverse(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.board.resize(m.canvasSize())
		return m, nil
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	if m.mode == ModeHelp {
		return m.helpView()
	}

	m.measureHeader()
	lines := m.renderCanvas().Lines()

	var result strings.Builder
	for _, line := range lines {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) statusLine() string {
	width, _ := m.canvasSize()
	switch {
	case m.errorMessage != "":
		return errorStyle.Render(truncate(m.errorMessage, width))
	case m.successMessage != "":
		return successStyle.Render(truncate(m.successMessage, width))
	}

	v := m.board.data.Viewport
	connections := "on"
	if !m.container.ShowConnections() {
		connections = "off"
	}
	st := m.container.State()
	status := fmt.Sprintf(" zoom %.0f%%  pan %.0f,%.0f  scenes %d  connections %d (%s)  %s  ? help",
		v.Scale*100, v.X, v.Y, len(m.board.data.Scenes), len(m.board.data.Connections), connections,
		activity(st.SceneState.String(), st.ConnectionState.String(), st.PanState.String()))
	if pad := width - lipgloss.Width(status); pad > 0 {
		status += strings.Repeat(" ", pad)
	}
	return statusStyle.Render(truncate(status, width))
}

// activity names the first busy channel.
func activity(states ...string) string {
	for _, s := range states {
		if s != "idle" {
			return s
		}
	}
	return "idle"
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}

func (m model) helpView() string {
	help := []string{
		titleStyle.Render("scenegraph"),
		"",
		"Mouse",
		"  drag scene header      move scene",
		"  drag scene body        draw a connection; drop on a scene",
		"  drag connection arrow  retarget; drop on nothing to remove",
		"  drag connection start  move the start anchor",
		"  drag background        pan",
		"  wheel                  zoom",
		"",
		"Keys",
		"  arrows / hjkl          pan (shift: faster)",
		"  + / -                  zoom in / out",
		"  0                      reset zoom",
		"  c                      toggle connections",
		"  p / t                  export PNG / text",
		"  y                      copy board to clipboard",
		"  esc                    cancel drag",
		"  ?                      close help",
		"  q                      quit",
	}
	return helpStyle.Render(strings.Join(help, "\n"))
}
