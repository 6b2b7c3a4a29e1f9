package tui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/QiPanTanYi/banyan/client/internal/session"
	"github.com/QiPanTanYi/banyan/models"
)

const notSet = "-"

func (m *model) updateProfileScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.checking {
		return m, nil
	}
	switch keyMsg.String() {
	case keyEsc, "b":
		return m, m.navigate(dashboardScreen)
	case "e":
		m.fillProfileInputs()
		return m, m.openForm(profileEditScreen, m.profileInputs)
	case "r":
		m.checking = true
		return m, m.refreshProfileCmd()
	case "o":
		return m, m.logoutCmd()
	case keyQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) viewProfileScreen() string {
	u := m.session.Snapshot().User
	var b strings.Builder
	b.WriteString(titleStyle.Render("Профиль") + "\n\n")
	if u == nil {
		b.WriteString(subtleStyle.Render("Профиль не загружен") + "\n")
		return b.String()
	}
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("ID", formatID(u.ID))
	row("Имя", u.Username)
	row("Email", deref(u.Email))
	row("Телефон", deref(u.Phone))
	row("Статус", statusText(u.Status))
	row("Последний вход", formatTime(u.LoginTime))
	if !u.CreatedAt.IsZero() {
		row("Создан", u.CreatedAt.Local().Format(time.DateTime))
	}
	return b.String()
}

// updateProfileEditScreen меняет профиль только на клиенте.
func (m *model) updateProfileEditScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	submit := func() tea.Cmd {
		username := strings.TrimSpace(m.profileInputs[profileFieldUsername].Value())
		email := strings.TrimSpace(m.profileInputs[profileFieldEmail].Value())
		phone := strings.TrimSpace(m.profileInputs[profileFieldPhone].Value())
		upd := session.UserUpdate{Email: &email, Phone: &phone}
		if username != "" {
			upd.Username = &username
		}
		if !m.session.UpdateUser(upd) {
			return m.navigate(profileScreen)
		}
		m.state = profileScreen
		return m.setStatusMessage("Изменения сохранены локально")
	}
	return m.handleFormInput(msg, m.profileInputs, submit, profileScreen)
}

func (m *model) viewProfileEditScreen() string {
	return m.viewForm("Изменение профиля", m.profileInputs)
}

func (m *model) fillProfileInputs() {
	resetInputs(m.profileInputs)
	u := m.session.Snapshot().User
	if u == nil {
		return
	}
	m.profileInputs[profileFieldUsername].SetValue(u.Username)
	if u.Email != nil {
		m.profileInputs[profileFieldEmail].SetValue(*u.Email)
	}
	if u.Phone != nil {
		m.profileInputs[profileFieldPhone].SetValue(*u.Phone)
	}
}

func statusText(status int) string {
	if status == models.UserStatusActive {
		return "активен"
	}
	return "отключен"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return notSet
	}
	return t.Local().Format(time.DateTime)
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return notSet
	}
	return *s
}

func formatID(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}
