package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// Pick opens an interactive table of conversations and returns the one
// chosen with enter. ok is false when the user quits without choosing.
func Pick(ctx context.Context, items []api.Summary, headers bool) (api.Summary, bool, error) {
	m := newPicker(items, headers)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return api.Summary{}, false, err
	}
	if fm, ok := final.(picker); ok && fm.chosen >= 0 {
		return items[fm.chosen], true, nil
	}
	return api.Summary{}, false, nil
}

type picker struct {
	table   table.Model
	items   []api.Summary
	chosen  int
	headers bool
	width   int
	height  int
}

func newPicker(items []api.Summary, headers bool) picker {
	m := picker{items: items, chosen: -1, headers: headers}
	m.table = table.New(table.WithColumns(m.columnsFor(10, 40, 16, 6, 16)), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
	return m
}

func (m *picker) updateRows() {
	rows := make([]table.Row, 0, len(m.items))
	for _, s := range m.items {
		rows = append(rows, table.Row{
			s.ID,
			s.Title,
			s.Bot,
			strconv.Itoa(s.Turns),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.items) {
				m.chosen = idx
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m picker) View() string {
	if len(m.items) == 0 {
		return "(no conversations)\n"
	}
	left := "↑/↓ to navigate • enter=open • q=exit"
	right := fmt.Sprintf("%d conversations ", len(m.items))
	space := m.table.Width() - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}
	return m.table.View() + "\n" + left + strings.Repeat(" ", space) + right + "\n"
}

func (m *picker) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 6
	if avail < 50 {
		return
	}
	idW, turnsW, createdW := 10, 6, 16
	if avail >= 36+80 {
		idW = 36
	}
	rem := avail - idW - turnsW - createdW
	botW := rem / 3
	m.table.SetColumns(m.columnsFor(idW, rem-botW, botW, turnsW, createdW))
}

func (m *picker) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.BorderBottom(false).Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *picker) columnsFor(idW, titleW, botW, turnsW, createdW int) []table.Column {
	titles := []string{"ID", "Title", "Bot", "Turns", "Created"}
	if !m.headers {
		titles = make([]string, len(titles))
	}
	widths := []int{idW, titleW, botW, turnsW, createdW}
	cols := make([]table.Column, len(titles))
	for i := range cols {
		cols[i] = table.Column{Title: titles[i], Width: widths[i]}
	}
	return cols
}
