package dysrhythmia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	dysdto "codeclock/internal/modules/dysrhythmia/dto"
	apperrors "codeclock/internal/platform/errors"
	"codeclock/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type DysrhythmiaPort interface {
	Status(ctx context.Context) (dysdto.SessionOutput, error)
	Treat(ctx context.Context, key string) (dysdto.SessionOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SessionMsg struct {
	Out dysdto.SessionOutput
	Err error
}

// SwitchedMsg bubbles up after a switch-to-arrest so the app can change tab.
type SwitchedMsg struct {
	Out dysdto.SwitchOutput
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    DysrhythmiaPort
	session dysdto.SessionOutput
	active  bool
	cursor  int
	lastErr string
	width   int
	height  int
}

func New(port DysrhythmiaPort) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Status(context.Background())
		return SessionMsg{Out: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SessionMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, apperrors.ErrNoDysrhythmiaSession) {
				m.active = false
				m.lastErr = ""
			} else {
				m.lastErr = msg.Err.Error()
			}
			return m, nil
		}
		m.active = true
		m.lastErr = ""
		m.session = msg.Out
		if m.cursor >= len(m.session.Treatments) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		if !m.active || len(m.session.Treatments) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.session.Treatments)-1 {
				m.cursor++
			}
		case "enter":
			key := m.session.Treatments[m.cursor].Key
			return m, func() tea.Msg {
				out, err := m.port.Treat(context.Background(), key)
				return SessionMsg{Out: out, Err: err}
			}
		}
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if !m.active {
		body := theme.Muted.Render("No dysrhythmia consultation.") + "\n\n" +
			theme.Muted.Render("Open the palette (:) and run  dys:start adult  or  dys:start pediatric <kg>")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}

	left := theme.Pane.Width(m.width/2 - 2).Render(m.renderContext())
	right := theme.Pane.Width(m.width - m.width/2 - 2).Render(m.renderTreatments())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderContext() string {
	s := m.session.Session
	ctx := s.Context
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Assessment") + "\n\n")
	sb.WriteString(theme.Muted.Render("phase     ") + string(s.Phase) + "\n")
	sb.WriteString(theme.Muted.Render("patient   ") + string(ctx.PatientGroup))
	if ctx.WeightKg != nil {
		sb.WriteString(fmt.Sprintf("  %.1f kg", *ctx.WeightKg))
	}
	sb.WriteString("\n")
	if ctx.Branch != "" {
		sb.WriteString(theme.Muted.Render("branch    ") + string(ctx.Branch) + "\n")
	}
	if ctx.Stability != "" {
		sb.WriteString(theme.Muted.Render("stability ") + string(ctx.Stability) + "\n")
	}
	if ctx.QRSWidth != "" {
		sb.WriteString(theme.Muted.Render("qrs       ") + string(ctx.QRSWidth) + "\n")
	}
	if ctx.RhythmRegular != nil {
		sb.WriteString(theme.Muted.Render("regular   ") + yesNo(*ctx.RhythmRegular) + "\n")
	}
	if ctx.Monomorphic != nil {
		sb.WriteString(theme.Muted.Render("monomorph ") + yesNo(*ctx.Monomorphic) + "\n")
	}
	if ctx.SinusVsSVT != "" {
		sb.WriteString(theme.Muted.Render("diagnosis ") + string(ctx.SinusVsSVT) + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("atropine %d  adenosine %d  cardioversion %d\n",
		s.AtropineCount, s.AdenosineCount, s.CardioversionCount))
	if s.Outcome != "" {
		sb.WriteString("\n" + theme.Good.Render("outcome: "+string(s.Outcome)) + "\n")
	}
	if m.lastErr != "" {
		sb.WriteString("\n" + theme.Urgent.Render(m.lastErr) + "\n")
	}
	return sb.String()
}

func (m Model) renderTreatments() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Treatments") + "\n\n")
	if len(m.session.Treatments) == 0 {
		sb.WriteString(theme.Muted.Render("No treatments at this step.") + "\n")
		sb.WriteString(theme.Muted.Render("Use the palette to advance the assessment.") + "\n")
		return sb.String()
	}
	for i, opt := range m.session.Treatments {
		marker := "  "
		style := theme.Plain
		if i == m.cursor {
			marker = theme.Hot.Render("> ")
			style = theme.Hot
		}
		sb.WriteString(marker + style.Render(opt.Label) + "\n")
		if opt.Guidance != "" {
			sb.WriteString("    " + theme.Muted.Render(opt.Guidance) + "\n")
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: apply  ↑/↓: select") + "\n")
	return sb.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
