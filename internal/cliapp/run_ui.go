package cliapp

import (
	tea "github.com/charmbracelet/bubbletea"

	coreapp "pylens/internal/core/app"
)

func runUI(app *coreapp.App, initial *coreapp.ProjectReport) error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())

	app.SetUpdateHandler(func(update coreapp.Update) {
		p.Send(watchUpdateMsg{update: update})
	})

	go func() {
		p.Send(updateMsg{report: initial})
	}()

	_, err := p.Run()
	return err
}
