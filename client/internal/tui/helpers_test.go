//nolint:testpackage // Тесты в том же пакете для доступа к модели
package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/QiPanTanYi/banyan/client/internal/mocks"
	"github.com/QiPanTanYi/banyan/client/internal/session"
	"github.com/QiPanTanYi/banyan/models"
)

var (
	testAuth = &models.AuthResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    900,
		User:         models.PublicUser{ID: 7, Username: "alice", Status: models.UserStatusActive},
	}
	testProfile = &models.UserProfile{ID: 7, Username: "alice", Status: models.UserStatusActive}
)

// newTestModel создает модель с сессией поверх мок-клиента.
func newTestModel(t *testing.T) (*model, *mocks.Client) {
	t.Helper()
	client := &mocks.Client{}
	t.Cleanup(func() { client.AssertExpectations(t) })
	sess := session.New(client, &session.MemoryStorage{}, nil)
	return newModel(context.Background(), sess, nil), client
}

// newLoggedInModel возвращает модель на главной странице после входа.
func newLoggedInModel(t *testing.T) (*model, *mocks.Client) {
	t.Helper()
	m, client := newTestModel(t)
	client.On("Login", mock.Anything, "alice", "secret1").Return(testAuth, nil).Once()
	require.NoError(t, m.session.Login(context.Background(), "alice", "secret1"))
	m.state = dashboardScreen
	return m, client
}

func key(s string) tea.KeyMsg {
	switch s {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case keyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case keyShiftTab:
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// send передает сообщение в модель и возвращает команду.
func send(t *testing.T, m *model, msg tea.Msg) tea.Cmd {
	t.Helper()
	updated, cmd := m.Update(msg)
	require.Same(t, m, updated)
	return cmd
}

// run выполняет команду и передает ее результат обратно в модель.
func run(t *testing.T, m *model, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	send(t, m, msg)
	return msg
}
