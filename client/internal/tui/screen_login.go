package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// updateLoginScreen обрабатывает ввод данных для входа.
func (m *model) updateLoginScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := func() tea.Cmd {
		identifier := strings.TrimSpace(m.loginInputs[loginFieldIdentifier].Value())
		password := m.loginInputs[loginFieldPassword].Value()
		if identifier == "" || password == "" {
			return m.setStatusMessage("Введите имя пользователя и пароль")
		}
		m.checking = true
		return m.loginCmd(identifier, password)
	}
	return m.handleFormInput(msg, m.loginInputs, submit, welcomeScreen)
}

// viewLoginScreen отображает экран ввода данных для входа.
func (m *model) viewLoginScreen() string {
	return m.viewForm("Вход в учетную запись", m.loginInputs)
}

// viewForm отображает общий экран ввода с ошибкой сессии внизу.
func (m *model) viewForm(title string, inputs []textinput.Model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for _, in := range inputs {
		b.WriteString(in.View() + "\n")
	}
	if errText := m.session.Snapshot().Error; errText != "" {
		b.WriteString("\n" + errorStyle.Render("Ошибка: "+errText) + "\n")
	}
	return b.String()
}
