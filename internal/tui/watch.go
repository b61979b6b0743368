package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docfoundry/moniker-strip/internal/foundry"
)

// Watch is an interactive view over a running cloud eval: it polls the
// run status on an interval and renders the per-item results when the
// run reaches a terminal status.
type Watch struct {
	Client       *foundry.Client
	EvalID       string
	RunID        string
	PollInterval time.Duration
	ThemeName    string
}

// messages
type pollMsg struct {
	run *foundry.Run
	err error
}

type itemsMsg struct {
	items []foundry.OutputItem
	err   error
}

type tickMsg struct{}

// Run starts the watch TUI and blocks until the run finishes or the
// user quits. The final report stays on screen after exit.
func (w *Watch) Run(ctx context.Context) error {
	theme := ThemeByName(w.ThemeName)
	st := newStyles(theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	interval := w.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	m := &watchModel{
		ctx:      ctx,
		client:   w.Client,
		evalID:   w.EvalID,
		runID:    w.RunID,
		interval: interval,
		theme:    theme,
		st:       st,
		spin:     sp,
	}
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(*watchModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// watchModel implements tea.Model
type watchModel struct {
	ctx      context.Context
	client   *foundry.Client
	evalID   string
	runID    string
	interval time.Duration
	theme    Theme
	st       styles

	spin  spinner.Model
	run   *foundry.Run
	items []foundry.OutputItem
	polls int
	done  bool
	err   error
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.poll())
}

// poll returns a tea.Cmd that fetches the run status once.
func (m *watchModel) poll() tea.Cmd {
	client, ctx := m.client, m.ctx
	evalID, runID := m.evalID, m.runID
	return func() tea.Msg {
		run, err := client.GetRun(ctx, evalID, runID)
		return pollMsg{run: run, err: err}
	}
}

// fetchItems returns a tea.Cmd that fetches the graded output items.
func (m *watchModel) fetchItems() tea.Cmd {
	client, ctx := m.client, m.ctx
	evalID, runID := m.evalID, m.runID
	return func() tea.Msg {
		items, err := client.ListOutputItems(ctx, evalID, runID)
		return itemsMsg{items: items, err: err}
	}
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the poll interval.
func (m *watchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case pollMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}
		m.run = msg.run
		m.polls++
		if m.run.Terminal() {
			return m, m.fetchItems()
		}
		return m, m.scheduleTick()

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, m.poll()

	case itemsMsg:
		m.done = true
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.items = msg.items
		return m, tea.Quit
	}

	return m, nil
}

func (m *watchModel) View() string {
	if m.done && m.run != nil && m.err == nil {
		return RenderResults(m.theme, m.run, m.items)
	}
	if m.err != nil {
		return m.st.err.Render(fmt.Sprintf("watch error: %v", m.err)) + "\n"
	}

	status := "starting"
	if m.run != nil {
		status = m.run.Status
	}
	line := fmt.Sprintf("%s run %s: %s", m.spin.View(), m.runID, statusLabel(m.st, status))
	if m.polls > 0 {
		line += m.st.dim.Render(fmt.Sprintf("  (poll #%d)", m.polls))
	}
	line += m.st.dim.Render("  q=quit")
	return line + "\n"
}
