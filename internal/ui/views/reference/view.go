package reference

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	refdto "codeclock/internal/modules/reference/dto"
	"codeclock/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ReferencePort interface {
	List(ctx context.Context) ([]refdto.CardInfo, error)
	Read(ctx context.Context, cardID string, page int) (refdto.ReadOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type CardsLoadedMsg struct {
	Cards []refdto.CardInfo
	Err   error
}

type CardReadMsg struct {
	Out refdto.ReadOutput
	Err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type cardItem struct {
	card refdto.CardInfo
}

func (i cardItem) Title() string       { return i.card.Title }
func (i cardItem) Description() string { return i.card.Kind }
func (i cardItem) FilterValue() string { return i.card.Title }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    ReferencePort
	list    list.Model
	content viewport.Model
	current refdto.ReadOutput
	width   int
	height  int
}

func New(port ReferencePort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Reference"
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	return Model{port: port, list: l, content: vp}
}

func (m Model) Init() tea.Cmd {
	return m.loadCardsCmd()
}

// Filtering reports whether the list filter is open so global keys yield.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case CardsLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Reference: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Cards))
		for i, c := range msg.Cards {
			items[i] = cardItem{card: c}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case CardReadMsg:
		if msg.Err != nil {
			m.content.SetContent(theme.Urgent.Render(msg.Err.Error()))
			return m, nil
		}
		m.current = msg.Out
		m.content.SetContent(m.renderCard())
		m.content.GotoTop()

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(cardItem); ok {
				return m, m.readCmd(item.card.ID, 1)
			}
		case "right":
			if m.current.Kind == "pdf" && m.current.Page < m.current.TotalPage {
				return m, m.readCmd(m.current.CardID, m.current.Page+1)
			}
		case "left":
			if m.current.Kind == "pdf" && m.current.Page > 1 {
				return m, m.readCmd(m.current.CardID, m.current.Page-1)
			}
		}
	}

	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)

	var vCmd tea.Cmd
	m.content, vCmd = m.content.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 2 / 5
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	contentPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.content.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, contentPane)
}

func (m *Model) resize() {
	listW := m.width * 2 / 5
	m.list.SetSize(listW, m.height)
	m.content.Width = m.width - listW - 4
	m.content.Height = m.height - 4
}

func (m Model) renderCard() string {
	header := theme.Title.Render(m.current.Title)
	if m.current.Kind == "pdf" {
		header += theme.Muted.Render(fmt.Sprintf("  page %d/%d  (←/→)", m.current.Page, m.current.TotalPage))
	}
	return header + "\n\n" + m.current.Content
}

func (m Model) loadCardsCmd() tea.Cmd {
	return func() tea.Msg {
		cards, err := m.port.List(context.Background())
		return CardsLoadedMsg{Cards: cards, Err: err}
	}
}

func (m Model) readCmd(cardID string, page int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Read(context.Background(), cardID, page)
		return CardReadMsg{Out: out, Err: err}
	}
}
