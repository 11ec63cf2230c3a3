package log

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	arrestdto "codeclock/internal/modules/arrest/dto"
	apperrors "codeclock/internal/platform/errors"
	"codeclock/internal/ui/theme"
)

type LogPort interface {
	Log(ctx context.Context) (arrestdto.LogOutput, error)
}

type LoadedMsg struct {
	Out arrestdto.LogOutput
	Err error
}

// Model renders the intervention log of the active episode, newest last.
type Model struct {
	port     LogPort
	viewport viewport.Model
	empty    bool
	lastErr  string
	width    int
	height   int
}

func New(port LogPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)
	return Model{port: port, viewport: vp, empty: true}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Log(context.Background())
		return LoadedMsg{Out: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 2
		m.viewport.Height = m.height - 2

	case LoadedMsg:
		if msg.Err != nil {
			m.empty = true
			if !errors.Is(msg.Err, apperrors.ErrNoActiveEpisode) {
				m.lastErr = msg.Err.Error()
			}
			return m, nil
		}
		m.empty = len(msg.Out.Entries) == 0
		m.lastErr = ""
		m.viewport.SetContent(renderEntries(msg.Out))
		m.viewport.GotoBottom()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.empty {
		text := theme.Muted.Render("No interventions logged yet.")
		if m.lastErr != "" {
			text = theme.Urgent.Render(m.lastErr)
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
	}
	return m.viewport.View()
}

func renderEntries(out arrestdto.LogOutput) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Episode "+out.EpisodeID) + "\n\n")
	for _, e := range out.Entries {
		sb.WriteString(theme.Muted.Render("[" + clockFmt(e.Elapsed) + "] "))
		sb.WriteString(e.Label)
		if e.Details != "" {
			sb.WriteString("  " + e.Details)
		}
		if e.Value != nil {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("  %.4g %s", *e.Value, e.Unit)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func clockFmt(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
