//nolint:testpackage // Тесты в том же пакете для доступа к модели
package tui

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/QiPanTanYi/banyan/client/internal/api"
	"github.com/QiPanTanYi/banyan/client/internal/mocks"
)

func TestWelcomeScreen(t *testing.T) {
	t.Run("Переход ко входу", func(t *testing.T) {
		m, _ := newTestModel(t)
		assert.NotNil(t, send(t, m, key("l")))
		assert.Equal(t, loginScreen, m.state)
		assert.True(t, m.loginInputs[loginFieldIdentifier].Focused())
	})

	t.Run("Переход к регистрации", func(t *testing.T) {
		m, _ := newTestModel(t)
		send(t, m, key("r"))
		assert.Equal(t, registerScreen, m.state)
		assert.True(t, m.registerInput[registerFieldUsername].Focused())
	})

	t.Run("Защищенный экран без входа", func(t *testing.T) {
		m, _ := newTestModel(t)
		cmd := send(t, m, key("d"))
		assert.True(t, m.checking)

		run(t, m, cmd)
		assert.False(t, m.checking)
		assert.Equal(t, loginScreen, m.state)
		assert.Equal(t, dashboardScreen, m.pendingTarget)
		assert.Equal(t, "Требуется вход", m.statusMessage)
	})

	t.Run("Клавиши игнорируются во время проверки", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.checking = true
		assert.Nil(t, send(t, m, key("l")))
		assert.Equal(t, welcomeScreen, m.state)
	})
}

func TestUpdateLoginScreen(t *testing.T) {
	open := func(t *testing.T) (*model, *mocks.Client) {
		m, client := newTestModel(t)
		send(t, m, key("l"))
		return m, client
	}

	t.Run("ПереключениеПоляВперед", func(t *testing.T) {
		m, _ := open(t)
		send(t, m, key(keyTab))
		assert.Equal(t, loginFieldPassword, m.focusedField)
		assert.True(t, m.loginInputs[loginFieldPassword].Focused())
		assert.False(t, m.loginInputs[loginFieldIdentifier].Focused())
	})

	t.Run("ПереключениеПоляНазад", func(t *testing.T) {
		m, _ := open(t)
		send(t, m, key(keyShiftTab))
		assert.Equal(t, loginFieldPassword, m.focusedField)
		send(t, m, key(keyShiftTab))
		assert.Equal(t, loginFieldIdentifier, m.focusedField)
	})

	t.Run("ОтменаВхода", func(t *testing.T) {
		m, _ := open(t)
		send(t, m, key(keyEsc))
		assert.Equal(t, welcomeScreen, m.state)
	})

	t.Run("ПустыеПоля", func(t *testing.T) {
		m, _ := open(t)
		send(t, m, key(keyEnter))
		send(t, m, key(keyEnter))
		assert.Equal(t, loginScreen, m.state)
		assert.Equal(t, "Введите имя пользователя и пароль", m.statusMessage)
	})

	t.Run("ВводТекста", func(t *testing.T) {
		m, _ := open(t)
		send(t, m, key("alice"))
		assert.Equal(t, "alice", m.loginInputs[loginFieldIdentifier].Value())
	})

	t.Run("УспешныйВход", func(t *testing.T) {
		m, client := open(t)
		client.On("Login", mock.Anything, "alice@example.com", "secret1").Return(testAuth, nil).Once()
		m.loginInputs[loginFieldIdentifier].SetValue("  alice@example.com ")
		m.loginInputs[loginFieldPassword].SetValue("secret1")

		send(t, m, key(keyEnter))
		cmd := send(t, m, key(keyEnter))
		assert.True(t, m.checking)

		run(t, m, cmd)
		assert.False(t, m.checking)
		assert.Equal(t, dashboardScreen, m.state)
		assert.Equal(t, "Вход выполнен", m.statusMessage)
		assert.Empty(t, m.loginInputs[loginFieldPassword].Value())
		assert.True(t, m.session.Snapshot().IsAuthenticated)
		assert.Contains(t, m.View(), "Здравствуйте, alice!")
	})

	t.Run("ВозвратНаЗапрошенныйЭкран", func(t *testing.T) {
		m, client := newTestModel(t)
		client.On("Login", mock.Anything, "alice", "secret1").Return(testAuth, nil).Once()
		run(t, m, send(t, m, key("d")))
		m.pendingTarget = profileScreen
		m.loginInputs[loginFieldIdentifier].SetValue("alice")
		m.loginInputs[loginFieldPassword].SetValue("secret1")
		m.focusedField = loginFieldPassword

		run(t, m, send(t, m, key(keyEnter)))
		assert.Equal(t, profileScreen, m.state)
		assert.Equal(t, dashboardScreen, m.pendingTarget)
	})

	t.Run("НеверныйПароль", func(t *testing.T) {
		m, client := open(t)
		client.On("Login", mock.Anything, "alice", "wrong1").
			Return(nil, &api.APIError{Status: http.StatusUnauthorized, Message: "invalid username or password"}).Once()
		m.loginInputs[loginFieldIdentifier].SetValue("alice")
		m.loginInputs[loginFieldPassword].SetValue("wrong1")
		m.focusedField = loginFieldPassword

		run(t, m, send(t, m, key(keyEnter)))
		assert.Equal(t, loginScreen, m.state)
		assert.Contains(t, m.View(), "Ошибка: invalid username or password")

		// Ввод сбрасывает ошибку
		send(t, m, key("x"))
		assert.NotContains(t, m.View(), "invalid username or password")
	})

	t.Run("СетеваяОшибка", func(t *testing.T) {
		m, client := open(t)
		client.On("Login", mock.Anything, "alice", "secret1").Return(nil, errors.New("connection refused")).Once()
		m.loginInputs[loginFieldIdentifier].SetValue("alice")
		m.loginInputs[loginFieldPassword].SetValue("secret1")
		m.focusedField = loginFieldPassword

		run(t, m, send(t, m, key(keyEnter)))
		assert.Contains(t, m.View(), "connection refused")
	})
}
