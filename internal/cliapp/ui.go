package cliapp

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	coreapp "pylens/internal/core/app"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelDeadCode panelMode = iota
	panelFunctions
)

type model struct {
	deadList     list.Model
	functionList list.Model
	mode         panelMode

	report     *coreapp.ProjectReport
	lastUpdate time.Time

	fileCount      int
	functionCount  int
	crossFileCount int
	deadCount      int
}

type updateMsg struct {
	report *coreapp.ProjectReport
}

type watchUpdateMsg struct {
	update coreapp.Update
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.mode == panelDeadCode {
				m.mode = panelFunctions
			} else {
				m.mode = panelDeadCode
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		m.deadList.SetSize(width, height)
		m.functionList.SetSize(width, height)
	case updateMsg:
		m = m.applyReport(msg.report)
	case watchUpdateMsg:
		m.fileCount = msg.update.FileCount
		m.functionCount = msg.update.FunctionCount
		m.crossFileCount = msg.update.CrossFileCount
		m.deadCount = msg.update.DeadCount
		m.lastUpdate = time.Now()
	}

	var cmd tea.Cmd
	if m.mode == panelDeadCode {
		m.deadList, cmd = m.deadList.Update(msg)
	} else {
		m.functionList, cmd = m.functionList.Update(msg)
	}
	return m, cmd
}

func (m model) applyReport(r *coreapp.ProjectReport) model {
	if r == nil {
		return m
	}
	m.report = r
	m.fileCount = r.FileCount
	m.functionCount = r.FunctionCount
	m.crossFileCount = r.CrossFileCount
	m.deadCount = r.DeadCount
	m.lastUpdate = time.Now()

	deadItems := []list.Item{}
	functionItems := []list.Item{}
	for _, file := range r.Files {
		for _, dead := range file.DeadCode.DeadFunctions {
			deadItems = append(deadItems, item{
				title: fmt.Sprintf("%s:%d", file.Path, dead.Line),
				desc:  dead.Message,
			})
		}
		for _, lens := range file.CodeLens {
			functionItems = append(functionItems, item{
				title: fmt.Sprintf("%s  %s:%d", lens.Name, file.Path, lens.Line),
				desc:  lens.Title,
			})
		}
	}
	m.deadList.SetItems(deadItems)
	m.functionList.SetItems(functionItems)
	return m
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d functions | %d cross-file refs",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.functionCount, m.crossFileCount))

	var summary string
	if m.deadCount == 0 {
		summary = successStyle.Render("No unused functions")
	} else {
		summary = deadStyle.Render(fmt.Sprintf("%d unused functions", m.deadCount))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Python Analysis Monitor"), status, summary)
	help := statusStyle.Render("Keys: tab panel | / filter | q quit")

	body := m.deadList.View()
	if m.mode == panelFunctions {
		body = m.functionList.View()
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel() model {
	deadList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	deadList.Title = "Unused Functions"
	deadList.SetShowStatusBar(false)
	deadList.SetFilteringEnabled(true)

	functionList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	functionList.Title = "Function Explorer"
	functionList.SetShowStatusBar(false)
	functionList.SetFilteringEnabled(true)

	return model{
		deadList:     deadList,
		functionList: functionList,
		mode:         panelDeadCode,
		lastUpdate:   time.Now(),
	}
}
