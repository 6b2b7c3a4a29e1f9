package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) updateWelcomeScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.checking {
		return m, nil
	}
	switch keyMsg.String() {
	case keyQuit:
		return m, tea.Quit
	case "l", keyEnter:
		return m, m.openForm(loginScreen, m.loginInputs)
	case "r":
		return m, m.openForm(registerScreen, m.registerInput)
	case "d":
		return m, m.navigate(dashboardScreen)
	}
	return m, nil
}

func (m *model) viewWelcomeScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Banyan ERP") + "\n\n")
	b.WriteString("Добро пожаловать!\n")
	b.WriteString("Войдите в учетную запись или зарегистрируйтесь, чтобы продолжить.\n")
	return b.String()
}
