package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vsr/internal/virtual"
)

// Reader is the part of the navigation engine step mode drives.
type Reader interface {
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Act(ctx context.Context) error
	Perform(ctx context.Context, cmd virtual.Command, opts virtual.CommandOptions) error
	LastSpokenPhrase() (string, error)
	ItemText() (string, error)
	SpokenPhraseLog() ([]string, error)
}

// Model is the bubbletea model of step mode: the spoken log scrolls in a
// viewport and the current announcement is highlighted at the bottom.
type Model struct {
	ctx    context.Context
	reader Reader
	title  string

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	input    textinput.Model
	styles   Styles

	commanding bool
	ready      bool
	status     string
	err        error
}

// NewModel creates a step model over a started reader.
func NewModel(ctx context.Context, reader Reader, title string) Model {
	in := textinput.New()
	in.Prompt = ":"
	in.Placeholder = "moveToNextHeading"

	m := Model{
		ctx:      ctx,
		reader:   reader,
		title:    title,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		input:    in,
		styles:   NewStyles(DetectTheme()),
	}
	m.refresh()
	return m
}

// Run starts step mode in the alternate screen and blocks until it exits.
func Run(ctx context.Context, reader Reader, title string) error {
	_, err := tea.NewProgram(NewModel(ctx, reader, title), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-5, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.commanding {
			return m.updateCommand(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Command):
			m.commanding = true
			m.input.SetValue("")
			return m, m.input.Focus()
		case key.Matches(msg, m.keys.Next):
			m.do(m.reader.Next)
		case key.Matches(msg, m.keys.Previous):
			m.do(m.reader.Previous)
		case key.Matches(msg, m.keys.Act):
			m.do(m.reader.Act)
		case key.Matches(msg, m.keys.NextHeading):
			m.perform(virtual.MoveToNextHeading)
		case key.Matches(msg, m.keys.PrevHeading):
			m.perform(virtual.MoveToPreviousHeading)
		case key.Matches(msg, m.keys.NextLandmark):
			m.perform(virtual.MoveToNextLandmark)
		case key.Matches(msg, m.keys.PrevLandmark):
			m.perform(virtual.MoveToPreviousLandmark)
		case key.Matches(msg, m.keys.NextLink):
			m.perform(virtual.MoveToNextLink)
		case key.Matches(msg, m.keys.PrevLink):
			m.perform(virtual.MoveToPreviousLink)
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commanding = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.commanding = false
		m.input.Blur()
		name := strings.TrimSpace(m.input.Value())
		cmd, err := virtual.ParseCommand(name)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.perform(cmd)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) do(op func(context.Context) error) {
	m.err = op(m.ctx)
	m.refresh()
}

func (m *Model) perform(cmd virtual.Command) {
	m.err = m.reader.Perform(m.ctx, cmd, virtual.CommandOptions{})
	m.status = cmd.String()
	m.refresh()
}

// refresh renders the spoken log into the viewport.
func (m *Model) refresh() {
	log, err := m.reader.SpokenPhraseLog()
	if err != nil {
		m.err = err
		return
	}
	lines := make([]string, len(log))
	for i, p := range log {
		if i == len(log)-1 {
			lines[i] = m.styles.Current.Render(p)
		} else {
			lines[i] = m.styles.Phrase.Render(p)
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if item, err := m.reader.ItemText(); err == nil && item != "" {
		b.WriteString(m.styles.Item.Render(fmt.Sprintf("“%s”", item)))
		b.WriteString("\n")
	}
	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")

	if m.commanding {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return lipgloss.NewStyle().MaxWidth(max(m.viewport.Width, 1)).Render(b.String())
}

// LastPhrase returns the current announcement.
func (m Model) LastPhrase() string {
	p, _ := m.reader.LastSpokenPhrase()
	return p
}

// Err returns the error of the last operation, if any.
func (m Model) Err() error {
	return m.err
}
