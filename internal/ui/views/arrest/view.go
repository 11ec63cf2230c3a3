package arrest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	arrestdto "codeclock/internal/modules/arrest/dto"
	apperrors "codeclock/internal/platform/errors"
	"codeclock/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ArrestPort interface {
	Status(ctx context.Context) (arrestdto.EpisodeOutput, error)
	SelectRhythm(ctx context.Context, rhythm string) (arrestdto.EpisodeOutput, error)
	RhythmCheck(ctx context.Context) (arrestdto.EpisodeOutput, error)
	CompleteRhythmCheck(ctx context.Context, result, rhythm string) (arrestdto.EpisodeOutput, error)
	GiveDrug(ctx context.Context, drug string) (arrestdto.EpisodeOutput, error)
	ROSC(ctx context.Context) (arrestdto.EpisodeOutput, error)
	Terminate(ctx context.Context) (arrestdto.EpisodeOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// EpisodeMsg carries the refreshed episode after any arrest action.
type EpisodeMsg struct {
	Out arrestdto.EpisodeOutput
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    ArrestPort
	episode arrestdto.EpisodeOutput
	active  bool
	lastErr string
	width   int
	height  int
}

func New(port ArrestPort) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads the episode and recomputes the derived timers.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Status(context.Background())
		return EpisodeMsg{Out: out, Err: err}
	}
}

// Active reports whether an episode is loaded. The app model uses this to
// gate its recompute tick.
func (m Model) Active() bool { return m.active }

// CPRRunning reports whether compressions are on and no rhythm check is open.
func (m Model) CPRRunning() bool {
	if !m.active {
		return false
	}
	s := m.episode.Session
	return s.CPRActiveSince != nil && !s.InRhythmCheck && s.Outcome == ""
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EpisodeMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, apperrors.ErrNoActiveEpisode) {
				m.active = false
				m.lastErr = ""
			} else {
				// A rejected action keeps the last good episode on screen.
				m.lastErr = msg.Err.Error()
			}
			return m, nil
		}
		m.active = true
		m.lastErr = ""
		m.episode = msg.Out

	case tea.KeyMsg:
		if !m.active {
			return m, nil
		}
		switch msg.String() {
		case "1":
			return m, m.action(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
				return m.port.SelectRhythm(ctx, "vf_pvt")
			})
		case "2":
			return m, m.action(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
				return m.port.SelectRhythm(ctx, "asystole")
			})
		case "3":
			return m, m.action(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
				return m.port.SelectRhythm(ctx, "pea")
			})
		case "c":
			return m, m.action(m.port.RhythmCheck)
		case "s":
			return m, m.action(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
				return m.port.CompleteRhythmCheck(ctx, "shock", "")
			})
		case "r":
			return m, m.action(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
				return m.port.CompleteRhythmCheck(ctx, "resume", "")
			})
		case "e":
			return m, m.drug("epinephrine")
		case "a":
			return m, m.drug("amiodarone")
		case "l":
			return m, m.drug("lidocaine")
		case "o":
			return m, m.action(m.port.ROSC)
		case "t":
			return m, m.action(m.port.Terminate)
		}
	}
	return m, nil
}

func (m Model) action(fn func(ctx context.Context) (arrestdto.EpisodeOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(context.Background())
		return EpisodeMsg{Out: out, Err: err}
	}
}

func (m Model) drug(name string) tea.Cmd {
	return m.action(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
		return m.port.GiveDrug(ctx, name)
	})
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if !m.active {
		body := theme.Muted.Render("No active code.") + "\n\n" +
			theme.Muted.Render("Open the palette (:) and run  code:start adult  or  code:start pediatric <kg>")
		if m.lastErr != "" {
			body += "\n\n" + theme.Urgent.Render(m.lastErr)
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}

	left := theme.Pane.Width(leftWidth(m.width)).Render(m.renderTimers())
	right := theme.Pane.Width(m.width - leftWidth(m.width) - 4).Render(m.renderDetail())
	banner := m.renderAdvisory()
	return lipgloss.JoinVertical(lipgloss.Left, banner,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right))
}

func leftWidth(total int) int {
	w := total * 2 / 5
	if w < 28 {
		w = 28
	}
	return w
}

func (m Model) renderAdvisory() string {
	adv := m.episode.Advisory
	style := theme.Muted
	switch adv.Priority {
	case "critical":
		style = theme.Urgent
	case "warning":
		style = theme.Warn
	case "success":
		style = theme.Good
	}
	line := style.Render("▌ " + adv.Message)
	if adv.SubMessage != "" {
		line += "  " + theme.Muted.Render(adv.SubMessage)
	}
	return line
}

func (m Model) renderTimers() string {
	s := m.episode.Session
	t := m.episode.Timers
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Timers") + "\n\n")

	cycleStyle := theme.Plain
	if t.RhythmCheckDue {
		cycleStyle = theme.Urgent
	} else if t.PreShockAlert {
		cycleStyle = theme.Warn
	}
	sb.WriteString(theme.Muted.Render("rhythm check  ") + cycleStyle.Render(countdown(t.CPRCycleRemaining)) + "\n")

	epiStyle := theme.Plain
	if t.EpiDue {
		epiStyle = theme.Warn
	}
	sb.WriteString(theme.Muted.Render("epinephrine   ") + epiStyle.Render(countdown(t.EpiRemaining)) + "\n\n")

	sb.WriteString(theme.Muted.Render("elapsed       ") + clockFmt(t.TotalElapsed) + "\n")
	sb.WriteString(theme.Muted.Render("cpr time      ") + clockFmt(t.TotalCPRTime) + "\n")
	sb.WriteString(fmt.Sprintf("%s%3.0f%%\n", theme.Muted.Render("cpr fraction  "), t.CPRFraction()*100))
	if s.InRhythmCheck {
		sb.WriteString("\n" + theme.Warn.Render("COMPRESSIONS PAUSED") + "\n")
	}
	return sb.String()
}

func (m Model) renderDetail() string {
	s := m.episode.Session
	var sb strings.Builder
	title := strings.ToUpper(string(s.PathwayMode)) + " code"
	if s.PatientWeightKg != nil {
		title += fmt.Sprintf("  %.1f kg", *s.PatientWeightKg)
	}
	sb.WriteString(theme.Title.Render(title) + "\n\n")
	sb.WriteString(theme.Muted.Render("phase    ") + string(s.Phase) + "\n")
	if s.CurrentRhythm != "" {
		sb.WriteString(theme.Muted.Render("rhythm   ") + string(s.CurrentRhythm) + "\n")
	}
	sb.WriteString(theme.Muted.Render("airway   ") + string(s.AirwayStatus) + "  " + theme.Muted.Render("ratio ") + s.CPRRatio + "\n\n")

	sb.WriteString(fmt.Sprintf("shocks %d", s.ShockCount))
	if s.CurrentEnergyJ > 0 {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("  (next %.0f J)", s.CurrentEnergyJ)))
	}
	sb.WriteString("\n")
	sb.WriteString(drugLine("epinephrine", s.EpinephrineCount, m.episode.CanEpinephrine))
	sb.WriteString(drugLine("amiodarone", s.AmiodaroneCount, m.episode.CanAmiodarone))
	sb.WriteString(drugLine("lidocaine", s.LidocaineCount, m.episode.CanLidocaine))

	sb.WriteString("\n" + theme.Muted.Render("1/2/3: rhythm  c: check  s: shock  r: resume cpr") + "\n")
	sb.WriteString(theme.Muted.Render("e/a/l: drugs  o: rosc  t: terminate") + "\n")
	if m.lastErr != "" {
		sb.WriteString("\n" + theme.Urgent.Render(m.lastErr) + "\n")
	}
	return sb.String()
}

func drugLine(name string, count int, eligible bool) string {
	marker := theme.Muted.Render("·")
	if eligible {
		marker = theme.Good.Render("●")
	}
	return fmt.Sprintf("%s %-12s %d\n", marker, name, count)
}

func countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return clockFmt(d)
}

func clockFmt(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
