package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	reportdto "codeclock/internal/modules/report/dto"
	"codeclock/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ReportPort interface {
	List(ctx context.Context) ([]reportdto.ExporterInfo, error)
	ListFormats(ctx context.Context, exporterName string) ([]reportdto.FormatInfo, error)
	Export(ctx context.Context, input reportdto.ExportInput) (reportdto.ExportOutput, error)
	Summarize(ctx context.Context, exporterName string) (reportdto.SummaryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ExportersLoadedMsg struct {
	Exporters []reportdto.ExporterInfo
	Formats   map[string][]reportdto.FormatInfo
	Err       error
}

type ExportDoneMsg struct {
	Out reportdto.ExportOutput
	Err error
}

type SummaryMsg struct {
	Out reportdto.SummaryOutput
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port      ReportPort
	exporters []reportdto.ExporterInfo
	formats   map[string][]reportdto.FormatInfo
	output    viewport.Model
	status    string
	width     int
	height    int
}

func New(port ReportPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)
	return Model{port: port, output: vp, formats: map[string][]reportdto.FormatInfo{}}
}

func (m Model) Init() tea.Cmd {
	return m.loadExportersCmd()
}

// RunExport is called by the app when the palette issues report:export.
func (m Model) RunExport(exporter, format string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Export(context.Background(), reportdto.ExportInput{ExporterName: exporter, FormatID: format})
		return ExportDoneMsg{Out: out, Err: err}
	}
}

// RunSummary is called by the app when the palette issues report:summary.
func (m Model) RunSummary(exporter string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Summarize(context.Background(), exporter)
		return SummaryMsg{Out: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = m.width - m.width/3 - 4
		m.output.Height = m.height - 4

	case ExportersLoadedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		m.exporters = msg.Exporters
		m.formats = msg.Formats
		m.status = fmt.Sprintf("%d exporter(s) configured", len(msg.Exporters))

	case ExportDoneMsg:
		if msg.Err != nil {
			m.status = "export failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = "export done"
		if msg.Out.Path != "" {
			m.status += ": " + msg.Out.Path
		}
		m.output.SetContent(msg.Out.Content)
		m.output.GotoTop()

	case SummaryMsg:
		if msg.Err != nil {
			m.status = "summary failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = "summary ready"
		m.output.SetContent(msg.Out.Summary)
		m.output.GotoTop()
	}

	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	listW := m.width / 3
	sidebar := theme.Pane.Width(listW - 2).Render(m.renderExporters())
	outputPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.output.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, outputPane)
}

func (m Model) renderExporters() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Exporters") + "\n\n")
	if len(m.exporters) == 0 {
		sb.WriteString(theme.Muted.Render("None configured.") + "\n")
		sb.WriteString(theme.Muted.Render("Add exporters/exporters.json to the data dir.") + "\n")
	}
	for _, e := range m.exporters {
		marker := theme.Good.Render("●")
		if !e.Enabled {
			marker = theme.Muted.Render("·")
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n", marker, e.Name, theme.Muted.Render("v"+e.Version)))
		for _, f := range m.formats[e.Name] {
			sb.WriteString("    " + theme.Muted.Render(f.ID+"  "+f.Title) + "\n")
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("palette:  report:export <exporter> <format>") + "\n")
	sb.WriteString(theme.Muted.Render("          report:summary <exporter>") + "\n")
	if m.status != "" {
		sb.WriteString("\n" + theme.Plain.Render(m.status) + "\n")
	}
	return sb.String()
}

func (m Model) loadExportersCmd() tea.Cmd {
	return func() tea.Msg {
		exporters, err := m.port.List(context.Background())
		if err != nil {
			return ExportersLoadedMsg{Err: err}
		}
		formats := map[string][]reportdto.FormatInfo{}
		for _, e := range exporters {
			if !e.Enabled {
				continue
			}
			if fs, err := m.port.ListFormats(context.Background(), e.Name); err == nil {
				formats[e.Name] = fs
			}
		}
		return ExportersLoadedMsg{Exporters: exporters, Formats: formats}
	}
}
