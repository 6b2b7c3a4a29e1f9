package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/QiPanTanYi/banyan/client/internal/session"
	"github.com/QiPanTanYi/banyan/models"
)

// Сообщение для очистки статуса.
type clearStatusMsg struct{}

// sessionInitializedMsg приходит после восстановления сессии из хранилища.
type sessionInitializedMsg struct {
	authenticated bool
}

// authResultMsg приходит после входа или регистрации.
type authResultMsg struct {
	action string // "login" или "register"
	err    error
}

// guardResultMsg - решение охранника для экрана target.
type guardResultMsg struct {
	target   screenState
	decision session.Decision
}

// loggedOutMsg приходит после выхода.
type loggedOutMsg struct{}

// profileRefreshedMsg приходит после ручного обновления токенов и профиля.
type profileRefreshedMsg struct {
	err error
}

// clearStatusCmd возвращает команду, которая отправит clearStatusMsg через delay.
func clearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *model) initSessionCmd() tea.Cmd {
	return func() tea.Msg {
		return sessionInitializedMsg{authenticated: m.session.Initialize(m.ctx)}
	}
}

func (m *model) loginCmd(identifier, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{action: "login", err: m.session.Login(m.ctx, identifier, password)}
	}
}

func (m *model) registerCmd(req models.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{action: "register", err: m.session.Register(m.ctx, req)}
	}
}

func (m *model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		m.session.Logout(m.ctx)
		return loggedOutMsg{}
	}
}

// guardCmd проверяет доступ к экрану target.
func (m *model) guardCmd(target screenState) tea.Cmd {
	return func() tea.Msg {
		return guardResultMsg{target: target, decision: m.session.Guard(m.ctx, target.path())}
	}
}

// refreshProfileCmd обновляет пару токенов и перечитывает профиль с сервера.
func (m *model) refreshProfileCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.session.RefreshToken(m.ctx); err != nil {
			m.session.Logout(m.ctx)
			return profileRefreshedMsg{err: err}
		}
		m.session.SetUser(nil)
		if !m.session.CheckAuth(m.ctx) {
			return profileRefreshedMsg{err: errSessionExpired}
		}
		return profileRefreshedMsg{}
	}
}
