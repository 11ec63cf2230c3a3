package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	arrestdto "codeclock/internal/modules/arrest/dto"
	dysdto "codeclock/internal/modules/dysrhythmia/dto"
	refdto "codeclock/internal/modules/reference/dto"
	reportdto "codeclock/internal/modules/report/dto"
	"codeclock/internal/ui/components"
	"codeclock/internal/ui/theme"
	arrestview "codeclock/internal/ui/views/arrest"
	dysview "codeclock/internal/ui/views/dysrhythmia"
	logview "codeclock/internal/ui/views/log"
	refview "codeclock/internal/ui/views/reference"
	reportsview "codeclock/internal/ui/views/reports"
)

// recomputeInterval drives the live countdown redraw while compressions run.
const recomputeInterval = 100 * time.Millisecond

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this orchestration layer requires.

type arrestPort interface {
	arrestview.ArrestPort
	Start(ctx context.Context, mode string, weightKg *float64) (arrestdto.EpisodeOutput, error)
	Resume(ctx context.Context) (arrestdto.EpisodeOutput, error)
	SetAirway(ctx context.Context, status string) (arrestdto.EpisodeOutput, error)
	MarkChecklist(ctx context.Context, list, item string) (arrestdto.EpisodeOutput, error)
	AddNote(ctx context.Context, text string) (arrestdto.EpisodeOutput, error)
	RecordETCO2(ctx context.Context, value float64) (arrestdto.EpisodeOutput, error)
	Finish(ctx context.Context) (arrestdto.FinishOutput, error)
	Log(ctx context.Context) (arrestdto.LogOutput, error)
}

type dysPort interface {
	dysview.DysrhythmiaPort
	Start(ctx context.Context, group string, weightKg *float64) (dysdto.SessionOutput, error)
	SelectBranch(ctx context.Context, branch string) (dysdto.SessionOutput, error)
	AssessBradycardia(ctx context.Context, stability string) (dysdto.SessionOutput, error)
	AssessTachycardia(ctx context.Context, stability, qrs string, regular, monomorphic *bool) (dysdto.SessionOutput, error)
	DifferentiateSVT(ctx context.Context, choice string, criteria dysdto.SinusDifferentiation) (dysdto.SessionOutput, error)
	Resolve(ctx context.Context) (dysdto.SessionOutput, error)
	Transfer(ctx context.Context) (dysdto.SessionOutput, error)
	SwitchToArrest(ctx context.Context) (dysdto.SwitchOutput, error)
}

type referencePort interface {
	List(ctx context.Context) ([]refdto.CardInfo, error)
	Read(ctx context.Context, cardID string, page int) (refdto.ReadOutput, error)
}

type reportPort interface {
	List(ctx context.Context) ([]reportdto.ExporterInfo, error)
	ListFormats(ctx context.Context, exporterName string) ([]reportdto.FormatInfo, error)
	Export(ctx context.Context, input reportdto.ExportInput) (reportdto.ExportOutput, error)
	Summarize(ctx context.Context, exporterName string) (reportdto.SummaryOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabArrest tabID = iota
	tabDysrhythmia
	tabLog
	tabReference
	tabReports
	tabCount
)

var tabLabels = [tabCount]string{
	"Arrest", "Dysrhythmia", "Log", "Reference", "Reports",
}

// ─── async messages ──────────────────────────────────────────────────────────

type tickMsg time.Time

type finishedMsg struct {
	out arrestdto.FinishOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Rhythm  key.Binding
	Check   key.Binding
	Drugs   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Rhythm:  key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "rhythm")),
		Check:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "rhythm check")),
		Drugs:   key.NewBinding(key.WithKeys("e", "a", "l"), key.WithHelp("e/a/l", "drugs")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Rhythm, k.Check, k.Drugs},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the palette, the
// help overlay and the countdown recompute tick. Business logic stays behind
// the port interfaces; rendering is delegated to sub-views.
type Model struct {
	arrest arrestPort
	dys    dysPort

	arrestView  arrestview.Model
	dysView     dysview.Model
	logView     logview.Model
	refView     refview.Model
	reportsView reportsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	ticking   bool
	status    string
	width     int
	height    int
}

func NewModel(arrest arrestPort, dys dysPort, reference referencePort, reports reportPort) Model {
	return Model{
		arrest:      arrest,
		dys:         dys,
		arrestView:  arrestview.New(arrest),
		dysView:     dysview.New(dys),
		logView:     logview.New(arrest),
		refView:     refview.New(reference),
		reportsView: reportsview.New(reports),
		activeTab:   tabArrest,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.arrestView.Init(),
		m.dysView.Init(),
		m.logView.Init(),
		m.refView.Init(),
		m.reportsView.Init(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case tickMsg:
		if !m.arrestView.CPRRunning() {
			m.ticking = false
			return m, nil
		}
		return m, tea.Batch(m.arrestView.Refresh(), m.tickCmd())

	case arrestview.EpisodeMsg:
		var cmd tea.Cmd
		m.arrestView, cmd = m.arrestView.Update(msg)
		cmds = append(cmds, cmd)
		// Keep countdowns live while compressions run.
		if m.arrestView.CPRRunning() && !m.ticking {
			m.ticking = true
			cmds = append(cmds, m.tickCmd())
		}
		return m, tea.Batch(cmds...)

	case dysview.SessionMsg:
		var cmd tea.Cmd
		m.dysView, cmd = m.dysView.Update(msg)
		return m, cmd

	case dysview.SwitchedMsg:
		if msg.Err != nil {
			m.status = "switch to arrest: " + msg.Err.Error()
			return m, nil
		}
		m.status = "arrest episode started from consultation"
		m.activeTab = tabArrest
		return m, tea.Batch(m.arrestView.Refresh(), m.dysView.Refresh())

	case finishedMsg:
		if msg.err != nil {
			m.status = "finish: " + msg.err.Error()
			return m, nil
		}
		m.status = "episode archived: " + msg.out.Path
		return m, tea.Batch(m.arrestView.Refresh(), m.logView.Refresh())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabReference && m.refView.Filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			if m.activeTab == tabLog {
				cmds = append(cmds, m.logView.Refresh())
			}
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			if m.activeTab == tabLog {
				cmds = append(cmds, m.logView.Refresh())
			}
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			return m, m.palette.Open()
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabArrest:
		m.arrestView, tabCmd = m.arrestView.Update(msg)
	case tabDysrhythmia:
		m.dysView, tabCmd = m.dysView.Update(msg)
	case tabLog:
		m.logView, tabCmd = m.logView.Update(msg)
	case tabReference:
		m.refView, tabCmd = m.refView.Update(msg)
	case tabReports:
		m.reportsView, tabCmd = m.reportsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(recomputeInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabArrest:
		return m.arrestView.View()
	case tabDysrhythmia:
		return m.dysView.View()
	case tabLog:
		return m.logView.View()
	case tabReference:
		return m.refView.View()
	case tabReports:
		return m.reportsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "codeclock  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.arrestView.CPRRunning() {
		left = theme.Urgent.Render("● CPR") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "code:start":
		if len(parts) < 2 {
			m.status = "usage: code:start <adult|pediatric> [weight-kg]"
			return m, nil
		}
		weight := parseWeight(parts, 2)
		m.activeTab = tabArrest
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.Start(ctx, parts[1], weight)
		})

	case "code:resume":
		m.activeTab = tabArrest
		return m, m.arrestCmd(m.arrest.Resume)

	case "code:rhythm":
		if len(parts) < 2 {
			m.status = "usage: code:rhythm <vf-pvt|asystole|pea>"
			return m, nil
		}
		rhythm := strings.ReplaceAll(parts[1], "-", "_")
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.SelectRhythm(ctx, rhythm)
		})

	case "code:check":
		return m, m.arrestCmd(m.arrest.RhythmCheck)

	case "code:shock":
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.CompleteRhythmCheck(ctx, "shock", "")
		})

	case "code:no-shock":
		if len(parts) < 2 {
			m.status = "usage: code:no-shock <rhythm>"
			return m, nil
		}
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.CompleteRhythmCheck(ctx, "no_shock", parts[1])
		})

	case "code:resume-cpr", "code:resume-compressions":
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.CompleteRhythmCheck(ctx, "resume", "")
		})

	case "code:drug":
		if len(parts) < 2 {
			m.status = "usage: code:drug <epinephrine|amiodarone|lidocaine>"
			return m, nil
		}
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.GiveDrug(ctx, parts[1])
		})

	case "code:airway":
		if len(parts) < 2 {
			m.status = "usage: code:airway <none|bvm|supraglottic|ett>"
			return m, nil
		}
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.SetAirway(ctx, parts[1])
		})

	case "code:mark":
		if len(parts) < 3 {
			m.status = "usage: code:mark <hs_ts|pregnancy|post_rosc> <item>"
			return m, nil
		}
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.MarkChecklist(ctx, parts[1], parts[2])
		})

	case "code:note":
		text := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		if text == "" {
			m.status = "usage: code:note <text>"
			return m, nil
		}
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.AddNote(ctx, text)
		})

	case "code:etco2":
		if len(parts) < 2 {
			m.status = "usage: code:etco2 <mmHg>"
			return m, nil
		}
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			m.status = "invalid etco2 value"
			return m, nil
		}
		return m, m.arrestCmd(func(ctx context.Context) (arrestdto.EpisodeOutput, error) {
			return m.arrest.RecordETCO2(ctx, value)
		})

	case "code:rosc":
		return m, m.arrestCmd(m.arrest.ROSC)

	case "code:terminate":
		return m, m.arrestCmd(m.arrest.Terminate)

	case "code:finish":
		return m, func() tea.Msg {
			out, err := m.arrest.Finish(context.Background())
			return finishedMsg{out: out, err: err}
		}

	case "dys:start":
		if len(parts) < 2 {
			m.status = "usage: dys:start <adult|pediatric> [weight-kg]"
			return m, nil
		}
		weight := parseWeight(parts, 2)
		m.activeTab = tabDysrhythmia
		return m, m.dysCmd(func(ctx context.Context) (dysdto.SessionOutput, error) {
			return m.dys.Start(ctx, parts[1], weight)
		})

	case "dys:branch":
		if len(parts) < 2 {
			m.status = "usage: dys:branch <bradycardia|tachycardia>"
			return m, nil
		}
		return m, m.dysCmd(func(ctx context.Context) (dysdto.SessionOutput, error) {
			return m.dys.SelectBranch(ctx, parts[1])
		})

	case "dys:brady":
		if len(parts) < 2 {
			m.status = "usage: dys:brady <stable|unstable>"
			return m, nil
		}
		return m, m.dysCmd(func(ctx context.Context) (dysdto.SessionOutput, error) {
			return m.dys.AssessBradycardia(ctx, parts[1])
		})

	case "dys:tachy":
		if len(parts) < 3 {
			m.status = "usage: dys:tachy <stable|unstable> <narrow|wide> [regular|irregular] [mono|poly]"
			return m, nil
		}
		var regular, mono *bool
		if len(parts) >= 4 {
			regular = boolFlag(parts[3] == "regular")
		}
		if len(parts) >= 5 {
			mono = boolFlag(parts[4] == "mono")
		}
		return m, m.dysCmd(func(ctx context.Context) (dysdto.SessionOutput, error) {
			return m.dys.AssessTachycardia(ctx, parts[1], parts[2], regular, mono)
		})

	case "dys:sinus":
		if len(parts) < 2 {
			m.status = "usage: dys:sinus <sinus|svt>"
			return m, nil
		}
		return m, m.dysCmd(func(ctx context.Context) (dysdto.SessionOutput, error) {
			return m.dys.DifferentiateSVT(ctx, parts[1], dysdto.SinusDifferentiation{})
		})

	case "dys:treat":
		if len(parts) < 2 {
			m.status = "usage: dys:treat <key>"
			return m, nil
		}
		return m, m.dysCmd(func(ctx context.Context) (dysdto.SessionOutput, error) {
			return m.dys.Treat(ctx, parts[1])
		})

	case "dys:resolve":
		return m, m.dysCmd(m.dys.Resolve)

	case "dys:transfer":
		return m, m.dysCmd(m.dys.Transfer)

	case "dys:switch-to-arrest":
		return m, func() tea.Msg {
			out, err := m.dys.SwitchToArrest(context.Background())
			return dysview.SwitchedMsg{Out: out, Err: err}
		}

	case "report:export":
		if len(parts) < 3 {
			m.status = "usage: report:export <exporter> <format>"
			return m, nil
		}
		m.activeTab = tabReports
		return m, m.reportsView.RunExport(parts[1], parts[2])

	case "report:summary":
		if len(parts) < 2 {
			m.status = "usage: report:summary <exporter>"
			return m, nil
		}
		m.activeTab = tabReports
		return m, m.reportsView.RunSummary(parts[1])

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) arrestCmd(fn func(ctx context.Context) (arrestdto.EpisodeOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(context.Background())
		return arrestview.EpisodeMsg{Out: out, Err: err}
	}
}

func (m Model) dysCmd(fn func(ctx context.Context) (dysdto.SessionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(context.Background())
		return dysview.SessionMsg{Out: out, Err: err}
	}
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.arrestView, _ = m.arrestView.Update(sz)
	m.dysView, _ = m.dysView.Update(sz)
	m.logView, _ = m.logView.Update(sz)
	m.refView, _ = m.refView.Update(sz)
	m.reportsView, _ = m.reportsView.Update(sz)
}

func parseWeight(parts []string, idx int) *float64 {
	if len(parts) <= idx {
		return nil
	}
	v, err := strconv.ParseFloat(parts[idx], 64)
	if err != nil {
		return nil
	}
	return &v
}

func boolFlag(v bool) *bool { return &v }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
