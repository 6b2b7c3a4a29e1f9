//nolint:testpackage // Тесты в том же пакете для доступа к модели
package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenState(t *testing.T) {
	tests := []struct {
		state     screenState
		name      string
		path      string
		protected bool
	}{
		{welcomeScreen, "welcome", "/", false},
		{loginScreen, "login", "/login", false},
		{registerScreen, "register", "/register", false},
		{dashboardScreen, "dashboard", "/dashboard", true},
		{profileScreen, "profile", "/profile", true},
		{profileEditScreen, "profile_edit", "/profile", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.state.String())
			assert.Equal(t, tt.path, tt.state.path())
			assert.Equal(t, tt.protected, tt.state.protected())
		})
	}
	assert.Equal(t, "screen(42)", screenState(42).String())
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, welcomeScreen, m.state)
	assert.Equal(t, dashboardScreen, m.pendingTarget)
	assert.Len(t, m.loginInputs, numLoginFields)
	assert.Len(t, m.registerInput, numRegisterFields)
	assert.Len(t, m.profileInputs, numProfileFields)
	assert.Equal(t, "*", string(m.loginInputs[loginFieldPassword].EchoCharacter))
	assert.Contains(t, m.View(), "Banyan ERP")
}

func TestSessionInitialization(t *testing.T) {
	t.Run("Пустое хранилище", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.checking = true

		msg := run(t, m, m.initSessionCmd())
		assert.Equal(t, sessionInitializedMsg{authenticated: false}, msg)
		assert.False(t, m.checking)
		assert.Equal(t, welcomeScreen, m.state)
	})

	t.Run("Сессия восстановлена", func(t *testing.T) {
		m, _ := newTestModel(t)
		send(t, m, sessionInitializedMsg{authenticated: true})
		assert.Equal(t, dashboardScreen, m.state)
	})
}
