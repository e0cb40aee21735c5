package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrDeclined is returned when the user discards the changes
var ErrDeclined = errors.New("changes discarded")

// Default viewport size before the terminal reports its own
const (
	defaultWidth  = 80
	defaultHeight = 20
)

// ReviewModel shows pending changes in a scrollable pane and waits for the
// user to confirm or discard them
type ReviewModel struct {
	Title     string
	Content   string
	Confirmed bool
	Done      bool

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewReviewModel creates a review screen for content
func NewReviewModel(title, content string) *ReviewModel {
	vp := viewport.New(defaultWidth, defaultHeight)
	vp.SetContent(content)

	return &ReviewModel{
		Title:    title,
		Content:  content,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		viewport: vp,
		width:    defaultWidth,
		height:   defaultHeight,
	}
}

// Init implements tea.Model
func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.Confirmed = true
			m.Done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.Confirmed = false
			m.Done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.SetSize(m.width, m.height)
		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(1)
		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(1)
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.ViewUp()
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.ViewDown()
		case key.Matches(msg, m.keys.Home):
			m.viewport.GotoTop()
		case key.Matches(msg, m.keys.End):
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize fits the viewport between the header and the help bar
func (m *ReviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chrome)
}

// View implements tea.Model
func (m *ReviewModel) View() string {
	if m.Done {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m *ReviewModel) headerView() string {
	lines := strings.Count(m.Content, "\n")
	return HeaderStyle.Render(m.Title) + " " +
		MutedStyle.Render(fmt.Sprintf("(%d lines)", lines))
}

func (m *ReviewModel) footerView() string {
	scroll := MutedStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	return HelpBarStyle.Render(m.help.View(m.keys)) + " " + scroll
}

// Review runs the review screen and reports whether the user confirmed
func Review(title, content string, opts ...tea.ProgramOption) (bool, error) {
	model := NewReviewModel(title, content)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return false, fmt.Errorf("review screen failed: %w", err)
	}

	result, ok := final.(*ReviewModel)
	if !ok {
		return false, nil
	}
	return result.Confirmed, nil
}
