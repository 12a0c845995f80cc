// Package tui provides the live link monitor. It is a read-only view:
// it polls the store and the transfer journal, never writes to either.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/boardlink/boardlink/internal/journal"
	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/store"
)

// --- Styles ---

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD"))

	statusOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	statusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	statusFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	statusIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1)
)

const (
	refreshEvery   = time.Second
	historyEntries = 10
)

// Model is the bubbletea model behind the monitor command.
type Model struct {
	store   *store.Store
	journal *journal.Journal

	width  int
	height int

	links     []link.Descriptor
	transfers []journal.Entry
	nextID    int
	lastErr   error

	linkTable table.Model
}

type refreshMsg struct {
	links     []link.Descriptor
	transfers []journal.Entry
	nextID    int
}

type errMsg error

// NewMonitor builds the monitor over an open store and journal.
func NewMonitor(s *store.Store, j *journal.Journal) *Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "ID", Width: 4},
			{Title: "Name", Width: 16},
			{Title: "Read", Width: 24},
			{Title: "Write", Width: 32},
			{Title: "Synced", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s2 := table.DefaultStyles()
	s2.Header = s2.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s2.Selected = s2.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s2)

	return &Model{
		store:     s,
		journal:   j,
		linkTable: t,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		tea.EnterAltScreen,
	)
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.linkTable.SetWidth(m.width - 6)

	case refreshMsg:
		m.links = msg.links
		m.transfers = msg.transfers
		m.nextID = msg.nextID
		m.lastErr = nil
		m.updateTable()
		return m, m.tick()

	case errMsg:
		m.lastErr = msg
		return m, m.tick()
	}

	m.linkTable, cmd = m.linkTable.Update(msg)
	return m, cmd
}

func (m *Model) updateTable() {
	var rows []table.Row
	for _, d := range m.links {
		synced := "-"
		if !d.LastSyncAt.IsZero() {
			synced = d.LastSyncAt.Local().Format("15:04:05")
		}
		rows = append(rows, table.Row{
			stateSymbol(d.State()),
			strconv.Itoa(d.ID),
			d.Name,
			d.ReadPath,
			d.WritePath,
			synced,
		})
	}
	m.linkTable.SetRows(rows)
}

func stateSymbol(s link.State) string {
	switch s {
	case link.StateRunning:
		return statusOK.Render("●")
	case link.StatePresave, link.StateStopping:
		return statusRunning.Render("◉")
	case link.StateHardFaulted:
		return statusFailed.Render("∅")
	default:
		return statusIdle.Render("○")
	}
}

// --- View ---

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := m.renderHeader()
	linksView := borderStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Links"),
			m.linkTable.View(),
		),
	)

	transfersView := borderStyle.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Transfers"),
			m.renderTransfers(),
		),
	)

	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(" [q] Quit • [↑/↓] Scroll Links")

	return docStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			linksView,
			transfersView,
			help,
		),
	)
}

func (m Model) renderHeader() string {
	var active, faulted int
	for _, d := range m.links {
		switch d.State() {
		case link.StateHardFaulted:
			faulted++
		case link.StateRunning, link.StatePresave, link.StateStopping:
			active++
		}
	}

	status := statusOK.Render("OK")
	if m.lastErr != nil {
		status = statusFailed.Render("STORE ERROR")
	} else if faulted > 0 {
		status = statusFailed.Render("FAULTED")
	}

	items := []string{
		fmt.Sprintf("Status: %s", status),
		fmt.Sprintf("Links: %d", len(m.links)),
		fmt.Sprintf("Active: %d", active),
		fmt.Sprintf("Next ID: %d", m.nextID),
	}

	return borderStyle.Width(m.width - 4).Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[0]),
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[1]),
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[2]),
			lipgloss.NewStyle().Width((m.width-4)/4).Render(items[3]),
		),
	)
}

func (m Model) renderTransfers() string {
	if len(m.transfers) == 0 {
		return "  No transfers yet..."
	}
	var lines []string
	for i, e := range m.transfers {
		if i >= historyEntries {
			break
		}
		ts := e.CreatedAt.Local().Format("15:04:05")
		lines = append(lines, fmt.Sprintf("%s | link %d | %-7s | %s", ts, e.LinkID, e.Action, e.Path))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// --- Commands ---

func (m Model) tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg {
		return m.fetch()
	})
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return m.fetch()
	}
}

func (m Model) fetch() tea.Msg {
	links, err := m.store.List("*")
	if err != nil {
		return errMsg(err)
	}
	nextID, err := m.store.NextID()
	if err != nil {
		return errMsg(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	transfers, err := m.journal.List(ctx, historyEntries)
	if err != nil {
		return errMsg(err)
	}
	return refreshMsg{links: links, transfers: transfers, nextID: nextID}
}
