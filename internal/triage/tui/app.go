// Package tui renders an interactive terminal view of a triage report:
// a findings tab, a metrics tab, and trend charts for old-gen and
// metaspace growth.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jvmtools/gctriage/internal/triage"
	"github.com/jvmtools/gctriage/utils"
)

type Tab int

const (
	FindingsTab Tab = iota
	MetricsTab
	TrendsTab
)

var tabNames = []string{"Findings", "Metrics", "Trends"}

type Model struct {
	report  *triage.Report
	metrics *triage.Metrics

	currentTab Tab
	viewport   viewport.Model
	width      int
	height     int
	ready      bool
}

func initialModel(report *triage.Report, metrics *triage.Metrics) *Model {
	return &Model{
		report:  report,
		metrics: metrics,
	}
}

// Run starts the interactive view and blocks until the user quits.
func Run(report *triage.Report, metrics *triage.Metrics) error {
	p := tea.NewProgram(initialModel(report, metrics), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := lipgloss.Height(m.headerView())
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-1)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - 1
		}
		m.viewport.SetContent(m.tabContent())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.switchTab(FindingsTab)
		case "2":
			m.switchTab(MetricsTab)
		case "3":
			m.switchTab(TrendsTab)

		case "tab", "right", "l":
			m.switchTab(utils.GetNextEnum(m.currentTab, TrendsTab))
		case "shift+tab", "left", "h":
			m.switchTab(utils.GetPrevEnum(m.currentTab, TrendsTab))

		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) switchTab(tab Tab) {
	if tab == m.currentTab {
		return
	}
	m.currentTab = tab
	if m.ready {
		m.viewport.SetContent(m.tabContent())
		m.viewport.GotoTop()
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

func (m *Model) headerView() string {
	var tabs []string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.currentTab {
			tabs = append(tabs, utils.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, utils.TabInactiveStyle.Render(label))
		}
	}

	title := utils.TitleStyle.Render("gctriage")
	summary := utils.MutedStyle.Render(m.report.Summary())

	return title + " " + strings.Join(tabs, " ") + "\n" + summary
}

func (m *Model) footerView() string {
	return utils.MutedStyle.Render("1-3/tab: switch  j/k: scroll  q: quit")
}

func (m *Model) tabContent() string {
	switch m.currentTab {
	case MetricsTab:
		return m.renderMetrics()
	case TrendsTab:
		return m.renderTrends()
	default:
		return triage.RenderCLI(m.report)
	}
}
