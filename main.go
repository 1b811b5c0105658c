//go:build !gui

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/spex/internal/reader"
	"github.com/metcalfc/spex/internal/spectrum"
	"github.com/metcalfc/spex/internal/state"
)

var (
	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AAFF"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)
)

// reserved lines: status, controls and the table border
const chromeLines = 4

type model struct {
	path     string
	series   *spectrum.Series
	meta     *spectrum.Metadata
	table    table.Model
	showMeta bool
	quitting bool
	width    int
	height   int

	stateStore *state.StateStore
	fileHash   string
}

func seriesRows(s *spectrum.Series) []table.Row {
	if s == nil {
		return nil
	}
	rows := make([]table.Row, s.Len())
	for i := range rows {
		wl, v := formatPoint(s.Point(i))
		rows[i] = table.Row{wl, v}
	}
	return rows
}

func newModel(path string, s *spectrum.Series, m *spectrum.Metadata, v state.ViewState) model {
	valueTitle := "value"
	if s != nil {
		valueTitle = s.Column().String()
	}
	rows := seriesRows(s)
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "nm", Width: 6},
			{Title: valueTitle, Width: 16},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(24-chromeLines),
	)
	t.SetCursor(clampRow(v.Row, len(rows)))

	return model{
		path:     path,
		series:   s,
		meta:     m,
		table:    t,
		showMeta: v.ShowMetadata || s == nil,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "m", "M":
			m.showMeta = !m.showMeta
			return m, nil

		case "r", "R":
			m.table.GotoTop()
			if m.stateStore != nil && m.fileHash != "" {
				m.stateStore.Clear(m.fileHash)
			}
			return m, nil

		case "q", "Q", "ctrl+c":
			m.save()
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(1, m.height-chromeLines))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) save() {
	if m.stateStore == nil || m.fileHash == "" {
		return
	}
	m.stateStore.Set(m.fileHash, state.ViewState{
		Row:          m.table.Cursor(),
		ShowMetadata: m.showMeta,
	})
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.status())
	sb.WriteString("\n")

	var body string
	switch {
	case m.series == nil && m.meta == nil:
		body = emptyStyle.Render("Nothing read.")
	case m.series == nil:
		body = metadataPanel(m.meta)
	case m.showMeta && m.meta != nil:
		body = lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(m.table.View()), metadataPanel(m.meta))
	default:
		body = panelStyle.Render(m.table.View())
	}
	sb.WriteString(body)
	sb.WriteString("\n")

	sb.WriteString(controlsStyle.Render("↑/↓: scroll  g/G: top/bottom  M: metadata  R: reset  Q: quit"))
	return sb.String()
}

func (m model) status() string {
	if m.series == nil {
		return statusStyle.Render(m.path)
	}
	pos := 0
	if m.series.Len() > 0 {
		pos = m.table.Cursor() + 1
	}
	return statusStyle.Render(fmt.Sprintf("%s | %s | %d/%d",
		m.path,
		m.series.Column(),
		pos,
		m.series.Len(),
	))
}

func metadataPanel(md *spectrum.Metadata) string {
	rows := metadataRows(md)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = keyStyle.Render(r[0]+":") + " " + valueStyle.Render(r[1])
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func main() {
	c, err := parseFlags("spex", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try: spex -h")
		os.Exit(1)
	}

	logger := newLogger(os.Stderr, c.verbose)
	done, err := run(c, os.Stdout, logger)
	if err != nil {
		fatal(err)
	}
	if done {
		return
	}

	path := c.files[0]
	s, md, err := reader.Read(path, c.readOptions(logger)...)
	if err != nil {
		fatal(err)
	}

	store, hash, v := viewState(path, c.fresh)
	m := newModel(path, s, md, v)
	m.stateStore = store
	m.fileHash = hash

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}
