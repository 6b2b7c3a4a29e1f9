package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) updateDashboardScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case keyQuit:
		return m, tea.Quit
	case "p":
		return m, m.navigate(profileScreen)
	case "o":
		return m, m.logoutCmd()
	}
	return m, nil
}

func (m *model) viewDashboardScreen() string {
	st := m.session.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Banyan ERP") + "\n\n")
	if st.User != nil {
		b.WriteString(fmt.Sprintf("Здравствуйте, %s!\n", st.User.Username))
	}
	b.WriteString(subtleStyle.Render("Вы вошли в систему.") + "\n")
	return b.String()
}
