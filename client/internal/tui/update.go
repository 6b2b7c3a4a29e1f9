package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/client/internal/session"
)

var errSessionExpired = errors.New("сессия истекла, войдите снова")

// Update обрабатывает входящие сообщения.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, _ := m.docStyle.GetFrameSize()
		width := msg.Width - h - inputWidthOffset
		for _, inputs := range [][]textinput.Model{m.loginInputs, m.registerInput, m.profileInputs} {
			for i := range inputs {
				inputs[i].Width = width
			}
		}
		return m, nil

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil

	case sessionInitializedMsg:
		m.checking = false
		if msg.authenticated {
			m.logger.Info("Сессия восстановлена")
			m.state = dashboardScreen
		}
		return m, nil

	case authResultMsg:
		return m.handleAuthResult(msg)

	case guardResultMsg:
		return m.handleGuardResult(msg)

	case loggedOutMsg:
		m.state = welcomeScreen
		m.pendingTarget = dashboardScreen
		return m, m.setStatusMessage("Вы вышли из учетной записи")

	case profileRefreshedMsg:
		m.checking = false
		if msg.err != nil {
			m.logger.Info("Не удалось обновить профиль", zap.Error(msg.err))
			return m, tea.Batch(m.openForm(loginScreen, m.loginInputs), m.setStatusMessage(errSessionExpired.Error()))
		}
		return m, m.setStatusMessage("Профиль обновлен")

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.state {
	case welcomeScreen:
		return m.updateWelcomeScreen(msg)
	case loginScreen:
		return m.updateLoginScreen(msg)
	case registerScreen:
		return m.updateRegisterScreen(msg)
	case dashboardScreen:
		return m.updateDashboardScreen(msg)
	case profileScreen:
		return m.updateProfileScreen(msg)
	case profileEditScreen:
		return m.updateProfileEditScreen(msg)
	default:
		return m, nil
	}
}

// navigate открывает экран target. Защищенные экраны проходят через охранник.
func (m *model) navigate(target screenState) tea.Cmd {
	if !target.protected() {
		m.state = target
		return nil
	}
	m.checking = true
	return m.guardCmd(target)
}

func (m *model) handleGuardResult(msg guardResultMsg) (tea.Model, tea.Cmd) {
	m.checking = false
	switch msg.decision {
	case session.Allow:
		m.state = msg.target
		return m, nil
	case session.Pending:
		return m, m.setStatusMessage("Проверка сессии еще идет, повторите позже")
	default:
		m.logger.Info("Доступ к экрану без входа", zap.Stringer("screen", msg.target))
		m.pendingTarget = msg.target
		cmd := m.openForm(loginScreen, m.loginInputs)
		return m, tea.Batch(cmd, m.setStatusMessage("Требуется вход"))
	}
}

func (m *model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.checking = false
	if msg.err != nil {
		m.logger.Info("Аутентификация не выполнена", zap.String("action", msg.action), zap.Error(msg.err))
		return m, nil
	}

	resetInputs(m.loginInputs)
	resetInputs(m.registerInput)
	target := m.pendingTarget
	m.pendingTarget = dashboardScreen
	m.state = target

	status := "Вход выполнен"
	if msg.action == "register" {
		status = "Регистрация выполнена"
	}
	return m, m.setStatusMessage(status)
}
