// Package pbui provides the Bubble Tea personal-best browser.
package pbui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/report"
)

const leaderboardTab = "leaderboard"

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea personal-best browser.
type Model struct {
	userID string
	pbs    model.PersonalBests
	lb     model.LbPersonalBests

	tabs      []string
	activeTab int
	table     table.Model

	width  int
	height int
}

// NewModel constructs a browser over one user's bests. A tab is created per
// mode plus one for leaderboard bests when lb is non-empty.
func NewModel(userID string, pbs model.PersonalBests, lb model.LbPersonalBests) *Model {
	m := &Model{
		userID: userID,
		pbs:    pbs,
		lb:     lb,
		tabs:   report.SortedKeys(pbs),
	}
	if len(lb) > 0 {
		m.tabs = append(m.tabs, leaderboardTab)
	}
	m.table = table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.table.SetStyles(tableStyles())
	m.refreshTable()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(maxInt(1, msg.Height-headerHeight()-2))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.moveTab(1)
			return m, nil
		case "shift+tab", "left", "h":
			m.moveTab(-1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.tabs) == 0 {
		return fmt.Sprintf("No personal bests for %s.\n", m.userID) + headerStyle.Render("Quit: q") + "\n"
	}
	return strings.Join([]string{
		m.renderTabs(),
		m.table.View(),
		headerStyle.Render("Mode: tab/left/right  Scroll: up/down  Quit: q"),
	}, "\n")
}

// ActiveTab returns the selected tab name.
func (m *Model) ActiveTab() string {
	if len(m.tabs) == 0 {
		return ""
	}
	return m.tabs[m.activeTab]
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.refreshTable()
}

func (m *Model) refreshTable() {
	tab := m.ActiveTab()
	var cols []table.Column
	var rows []table.Row
	if tab == leaderboardTab {
		cols, rows = leaderboardTableData(m.lb)
	} else {
		cols, rows = modeTableData(m.pbs, tab)
	}
	// Rows must be cleared before columns shrink or the table indexes past them.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func headerHeight() int {
	return lipgloss.Height(activeNavStyle.Render("X"))
}

func modeTableData(pbs model.PersonalBests, mode string) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Mode2", Width: 6},
		{Title: "WPM", Width: 8},
		{Title: "Raw", Width: 8},
		{Title: "Acc", Width: 8},
		{Title: "Cons", Width: 8},
		{Title: "Difficulty", Width: 10},
		{Title: "Language", Width: 16},
		{Title: "Flags", Width: 14},
	}
	byMode2 := pbs[mode]
	rows := make([]table.Row, 0, len(byMode2))
	for _, mode2 := range report.SortedMode2(byMode2) {
		for _, pb := range byMode2[mode2] {
			rows = append(rows, table.Row{
				mode2,
				fmt.Sprintf("%.2f", pb.Wpm),
				fmt.Sprintf("%.2f", pb.Raw),
				fmt.Sprintf("%.2f%%", pb.Acc),
				fmt.Sprintf("%.2f%%", pb.Consistency),
				pb.Difficulty,
				pb.Language,
				flagLabel(pb),
			})
		}
	}
	return columns, rows
}

func leaderboardTableData(lb model.LbPersonalBests) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Mode", Width: 10},
		{Title: "Language", Width: 16},
		{Title: "WPM", Width: 8},
		{Title: "Acc", Width: 8},
	}
	var rows []table.Row
	for _, mode := range report.SortedKeys(lb) {
		for _, mode2 := range report.SortedMode2(lb[mode]) {
			byLang := lb[mode][mode2]
			for _, lang := range report.SortedKeys(byLang) {
				pb := byLang[lang]
				rows = append(rows, table.Row{
					mode + " " + mode2,
					lang,
					fmt.Sprintf("%.2f", pb.Wpm),
					fmt.Sprintf("%.2f%%", pb.Acc),
				})
			}
		}
	}
	return columns, rows
}

func flagLabel(pb model.PersonalBest) string {
	var out []string
	if pb.Punctuation {
		out = append(out, "punct")
	}
	if pb.Numbers {
		out = append(out, "num")
	}
	if pb.LazyMode {
		out = append(out, "lazy")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
