package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/QiPanTanYi/banyan/models"
)

// updateRegisterScreen обрабатывает ввод данных для регистрации.
// Проверка длины полей выполняется сервером, его сообщение показывается в форме.
func (m *model) updateRegisterScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := func() tea.Cmd {
		req := models.RegisterRequest{
			Username: strings.TrimSpace(m.registerInput[registerFieldUsername].Value()),
			Password: m.registerInput[registerFieldPassword].Value(),
			Email:    optional(strings.TrimSpace(m.registerInput[registerFieldEmail].Value())),
			Phone:    optional(strings.TrimSpace(m.registerInput[registerFieldPhone].Value())),
		}
		if req.Username == "" || req.Password == "" {
			return m.setStatusMessage("Введите имя пользователя и пароль")
		}
		m.checking = true
		return m.registerCmd(req)
	}
	return m.handleFormInput(msg, m.registerInput, submit, welcomeScreen)
}

func (m *model) viewRegisterScreen() string {
	return m.viewForm("Регистрация", m.registerInput)
}
