package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// RenderFunc produces the viewer content wrapped to width columns.
type RenderFunc func(width int) (string, error)

// View shows rendered content in a scrollable, boxed viewport until the user
// quits. Content is re-rendered whenever the terminal is resized.
func View(ctx context.Context, title string, render RenderFunc) error {
	m := newViewer(title, render, 0, 0)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(*viewer); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

type viewer struct {
	title  string
	render RenderFunc
	vp     viewport.Model
	box    lipglossv2.Style
	header lipglossv2.Style
	width  int
	height int
	padX   int
	padY   int
	err    error
}

func newViewer(title string, render RenderFunc, termW, termH int) *viewer {
	m := &viewer{title: title, render: render, padX: 2, padY: 1}
	m.header = lipglossv2.NewStyle().Bold(true).Foreground(lipglossv2.Color("63"))
	m.resizeForTerm(termW, termH)
	return m
}

func (m *viewer) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	// Leave one line for the title and one for the footer.
	w, h := termW, termH-2
	if h < 6 {
		h = 6
	}
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := max(10, w-2-m.padX*2)
	innerH := max(3, h-2-m.padY*2)
	if m.vp.Width == 0 {
		m.vp = viewport.New(innerW, innerH)
	} else {
		m.vp.Width = innerW
		m.vp.Height = innerH
	}
	content, err := m.render(innerW)
	if err != nil {
		m.err = err
		content = fmt.Sprintf("render failed: %v", err)
	}
	m.vp.SetContent(content)
}

func (m *viewer) Init() tea.Cmd { return nil }

func (m *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resizeForTerm(x.Width, x.Height)
		return m, nil
	case tea.KeyMsg:
		switch x.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *viewer) View() string {
	footer := fmt.Sprintf("↑/↓ pgup/pgdn to scroll • q=exit • %3.f%%", m.vp.ScrollPercent()*100)
	return m.header.Render(m.title) + "\n" + m.box.Render(m.vp.View()) + "\n" + footer
}
