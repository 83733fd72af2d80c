// Package tui is an interactive terminal report: a bubbletea program over the
// text renderer with a focus cursor moving through the report's controls.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/runlens/internal/render/text"
	"github.com/leapstack-labs/runlens/internal/report"
)

// FileLoadedMsg signals that a delimited file of the named panel resolved.
type FileLoadedMsg struct {
	Panel string
}

// ReloadedMsg carries the result of a document refetch.
type ReloadedMsg struct {
	Err error
}

// Updates buffers panel update notifications for a running program.
type Updates chan string

// NewUpdates creates an update channel.
func NewUpdates() Updates {
	return make(Updates, 64)
}

// Notify queues a panel update without blocking. When the buffer is full the
// notification is dropped; a queued one re-renders every panel anyway.
func (u Updates) Notify(panelName string) {
	select {
	case u <- panelName:
	default:
	}
}

// Config holds model configuration.
type Config struct {
	Report *report.Report
	// Updates delivers file completions from the report's OnUpdate (optional)
	Updates Updates
	// Styled enables ANSI colours
	Styled bool
	Logger *slog.Logger
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
)

// Model is the bubbletea model of one report.
type Model struct {
	ctx     context.Context
	report  *report.Report
	updates Updates
	styled  bool
	keys    KeyMap
	logger  *slog.Logger

	viewport viewport.Model
	ready    bool

	out      *text.Output
	focus    string // Key of the focused control
	focusIdx int

	status string
	err    error
}

// New creates a model. The report should already be loaded.
func New(ctx context.Context, cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := Model{
		ctx:     ctx,
		report:  cfg.Report,
		updates: cfg.Updates,
		styled:  cfg.Styled,
		keys:    DefaultKeyMap(),
		logger:  logger,
	}
	m.render()
	return m
}

// Run starts a full-screen program and blocks until it quits.
func Run(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(New(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FileLoadedMsg:
		m.logger.Debug("file loaded", "panel", msg.Panel)
		m.render()
		return m, waitForUpdate(m.updates)

	case ReloadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = "reloaded"
		}
		m.render()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.viewport.View() + "\n" + m.statusLine()
}

// Focused returns the focused control.
func (m Model) Focused() (text.Control, bool) {
	if m.out == nil || m.focusIdx >= len(m.out.Controls) || len(m.out.Controls) == 0 {
		return text.Control{}, false
	}
	return m.out.Controls[m.focusIdx], true
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	height := msg.Height - 1
	if height < 1 {
		height = 1
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, height)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = height
	}
	m.sync()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		m.activate()
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.step(-1)
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.step(1)
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.status = "reloading..."
		return m, reloadCmd(m.ctx, m.report)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	n := len(m.out.Controls)
	if n == 0 {
		return
	}
	m.focusIdx = (m.focusIdx + delta + n) % n
	m.focus = m.out.Controls[m.focusIdx].Key()
	m.render()
}

// activate applies the primary action of the focused control.
func (m *Model) activate() {
	c, ok := m.Focused()
	if !ok {
		return
	}
	switch c.Kind {
	case text.ControlVisibility:
		m.report.ToggleVisible(c.Path[0])
	case text.ControlToggle:
		m.report.Toggle(c.Path)
	case text.ControlPager:
		m.report.NextPage(c.Path)
	case text.ControlScrubber:
		if !m.report.Scrub(c.Path, m.report.Position(c.Path)+1) {
			m.report.Scrub(c.Path, 0)
		}
	}
	m.status = ""
	m.render()
}

// step pages a table or moves a step player by delta.
func (m *Model) step(delta int) {
	c, ok := m.Focused()
	if !ok {
		return
	}
	switch c.Kind {
	case text.ControlPager:
		if delta < 0 {
			m.report.PrevPage(c.Path)
		} else {
			m.report.NextPage(c.Path)
		}
	case text.ControlScrubber:
		m.report.Scrub(c.Path, m.report.Position(c.Path)+delta)
	default:
		return
	}
	m.render()
}

// render re-renders the report, keeping focus on the same control when it is
// still present and on the nearest one otherwise.
func (m *Model) render() {
	m.out = m.renderWith(m.focus)
	if idx := m.indexOf(m.focus); idx >= 0 {
		m.focusIdx = idx
	} else if n := len(m.out.Controls); n > 0 {
		m.focusIdx = min(m.focusIdx, n-1)
		m.focus = m.out.Controls[m.focusIdx].Key()
		m.out = m.renderWith(m.focus)
	} else {
		m.focusIdx, m.focus = 0, ""
	}
	m.sync()
}

func (m *Model) renderWith(focus string) *text.Output {
	r := text.New(text.Options{Styled: m.styled, Focus: focus})
	return r.Render(m.report.Views())
}

func (m *Model) indexOf(focus string) int {
	if focus == "" {
		return -1
	}
	for i, c := range m.out.Controls {
		if c.Key() == focus {
			return i
		}
	}
	return -1
}

// sync pushes the rendered text into the viewport and scrolls the focused
// control into view.
func (m *Model) sync() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.TrimRight(m.out.Text, "\n"))
	c, ok := m.Focused()
	if !ok {
		return
	}
	switch {
	case c.Line < m.viewport.YOffset:
		m.viewport.SetYOffset(c.Line)
	case c.Line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(c.Line - m.viewport.Height + 1)
	}
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := m.report.Run() + "  " + strings.Join(parts, " • ")
	if m.status != "" {
		line += "  " + m.status
	}
	return statusStyle.Render(line)
}

func waitForUpdate(ch Updates) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		name, ok := <-ch
		if !ok {
			return nil
		}
		return FileLoadedMsg{Panel: name}
	}
}

func reloadCmd(ctx context.Context, r *report.Report) tea.Cmd {
	return func() tea.Msg {
		return ReloadedMsg{Err: r.Load(ctx)}
	}
}
