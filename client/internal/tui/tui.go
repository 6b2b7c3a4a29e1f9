// Package tui реализует терминальный интерфейс клиента Banyan ERP.
// Модель владеет сессией и открывает защищенные экраны только через охранник маршрутов.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/client/internal/session"
)

const (
	statusMessageTimeout     = 3 * time.Second // Время отображения статусных сообщений
	docStyleMarginVertical   = 1
	docStyleMarginHorizontal = 2
	defaultInputWidth        = 40
	inputCharLimit           = 100
	inputWidthOffset         = 4
	labelWidth               = 16

	keyEnter    = "enter"
	keyQuit     = "q"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyUp       = "up"
	keyDown     = "down"
)

// Init запускает восстановление сессии.
func (m *model) Init() tea.Cmd {
	m.checking = true
	return tea.Batch(textinput.Blink, m.initSessionCmd())
}

// setStatusMessage устанавливает статусное сообщение и запускает таймер для его очистки.
func (m *model) setStatusMessage(status string) tea.Cmd {
	m.statusMessage = status
	return clearStatusCmd(statusMessageTimeout)
}

// getMainContentView возвращает основное содержимое для текущего состояния.
func (m *model) getMainContentView() string {
	switch m.state {
	case welcomeScreen:
		return m.viewWelcomeScreen()
	case loginScreen:
		return m.viewLoginScreen()
	case registerScreen:
		return m.viewRegisterScreen()
	case dashboardScreen:
		return m.viewDashboardScreen()
	case profileScreen:
		return m.viewProfileScreen()
	case profileEditScreen:
		return m.viewProfileEditScreen()
	default:
		return "Неизвестное состояние!"
	}
}

// helpText возвращает подсказку по клавишам для текущего экрана.
func (m *model) helpText() string {
	switch m.state {
	case welcomeScreen:
		return "l: вход • r: регистрация • q: выход"
	case loginScreen, registerScreen, profileEditScreen:
		return "tab/shift+tab: поле • enter: далее/отправить • esc: назад"
	case dashboardScreen:
		return "p: профиль • o: выйти из учетной записи • q: выход"
	case profileScreen:
		return "e: изменить • r: обновить • esc: назад • o: выйти из учетной записи"
	default:
		return ""
	}
}

// View отрисовывает пользовательский интерфейс.
func (m *model) View() string {
	var footer strings.Builder
	if m.checking {
		footer.WriteString("\n" + subtleStyle.Render("Проверка сессии..."))
	}
	if m.statusMessage != "" {
		footer.WriteString("\n" + statusStyle.Render(m.statusMessage))
	}
	return fmt.Sprintf("%s\n%s%s", m.docStyle.Render(m.getMainContentView()),
		subtleStyle.Render(m.helpText()), footer.String())
}

// Start запускает TUI и блокируется до выхода пользователя или отмены ctx.
func Start(ctx context.Context, sess *session.Session, logger *zap.Logger) error {
	m := newModel(ctx, sess, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		m.logger.Error("Ошибка при работе TUI", zap.Error(err))
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	return nil
}
