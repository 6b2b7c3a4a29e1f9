package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/QiPanTanYi/banyan/client/internal/api"
	"github.com/QiPanTanYi/banyan/client/internal/mocks"
	"github.com/QiPanTanYi/banyan/client/internal/session"
	"github.com/QiPanTanYi/banyan/models"
)

var (
	authResp = &models.AuthResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    900,
		User:         models.PublicUser{ID: 1, Username: "alice", Status: 1},
	}
	rotated = &models.AuthResponse{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresIn:    900,
		User:         models.PublicUser{ID: 1, Username: "alice", Status: 1},
	}
	profile = &models.UserProfile{ID: 1, Username: "alice", Status: 1}

	unauthorized = &api.APIError{Status: http.StatusUnauthorized, Message: "invalid or expired token"}
)

func newSession(t *testing.T) (*session.Session, *mocks.Client, *session.MemoryStorage) {
	t.Helper()
	client := &mocks.Client{}
	store := &session.MemoryStorage{}
	t.Cleanup(func() { client.AssertExpectations(t) })
	return session.New(client, store, nil), client, store
}

// loggedIn возвращает сессию после успешного входа.
func loggedIn(t *testing.T) (*session.Session, *mocks.Client, *session.MemoryStorage) {
	t.Helper()
	s, client, store := newSession(t)
	client.On("Login", mock.Anything, "alice", "secret1").Return(authResp, nil).Once()
	require.NoError(t, s.Login(context.Background(), "alice", "secret1"))
	return s, client, store
}

func TestSession_Login(t *testing.T) {
	t.Run("Успешный вход", func(t *testing.T) {
		s, client, store := loggedIn(t)

		st := s.Snapshot()
		assert.True(t, st.IsAuthenticated)
		assert.False(t, st.Loading)
		assert.Empty(t, st.Error)
		assert.Equal(t, "access-1", st.Token)
		assert.Equal(t, "refresh-1", st.RefreshToken)
		require.NotNil(t, st.User)
		assert.Equal(t, "alice", st.User.Username)
		assert.Equal(t, "access-1", client.Token())

		p, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.IsAuthenticated)
		assert.Equal(t, "refresh-1", p.RefreshToken)
	})

	t.Run("Неверные учетные данные", func(t *testing.T) {
		s, client, store := newSession(t)
		require.NoError(t, store.Save(session.Persisted{Token: "stale"}))
		client.On("Login", mock.Anything, "alice", "wrong").
			Return(nil, &api.APIError{Status: http.StatusUnauthorized, Message: "invalid username or password"}).Once()

		err := s.Login(context.Background(), "alice", "wrong")
		require.Error(t, err)

		st := s.Snapshot()
		assert.False(t, st.IsAuthenticated)
		assert.False(t, st.Loading)
		assert.Equal(t, "invalid username or password", st.Error)
		assert.Empty(t, st.Token)
		assert.Nil(t, st.User)

		p, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("Сетевая ошибка", func(t *testing.T) {
		s, client, _ := newSession(t)
		client.On("Login", mock.Anything, "alice", "secret1").Return(nil, errors.New("connection refused")).Once()

		require.Error(t, s.Login(context.Background(), "alice", "secret1"))
		assert.Equal(t, "connection refused", s.Snapshot().Error)
	})
}

func TestSession_Register(t *testing.T) {
	email := "a@x.com"
	req := models.RegisterRequest{Username: "alice", Password: "secret1", Email: &email}

	t.Run("Успех", func(t *testing.T) {
		s, client, _ := newSession(t)
		withEmail := *authResp
		withEmail.User.Email = &email
		client.On("Register", mock.Anything, req).Return(&withEmail, nil).Once()

		require.NoError(t, s.Register(context.Background(), req))
		st := s.Snapshot()
		assert.True(t, st.IsAuthenticated)
		require.NotNil(t, st.User)
		require.NotNil(t, st.User.Email)
		assert.Equal(t, email, *st.User.Email)
	})

	t.Run("Конфликт", func(t *testing.T) {
		s, client, _ := newSession(t)
		client.On("Register", mock.Anything, req).
			Return(nil, &api.APIError{Status: http.StatusConflict, Message: "username already exists"}).Once()

		require.Error(t, s.Register(context.Background(), req))
		st := s.Snapshot()
		assert.False(t, st.IsAuthenticated)
		assert.Equal(t, "username already exists", st.Error)
	})
}

func TestSession_Logout(t *testing.T) {
	t.Run("Сервер уведомлен", func(t *testing.T) {
		s, client, store := loggedIn(t)
		client.On("Logout", mock.Anything).Return(nil).Once()

		s.Logout(context.Background())

		assert.Equal(t, session.State{}, s.Snapshot())
		assert.Empty(t, client.Token())
		p, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("Ошибка сервера не мешает выходу", func(t *testing.T) {
		s, client, _ := loggedIn(t)
		client.On("Logout", mock.Anything).Return(errors.New("connection refused")).Once()

		s.Logout(context.Background())
		assert.False(t, s.Snapshot().IsAuthenticated)
	})

	t.Run("Без токена сервер не вызывается", func(t *testing.T) {
		s, _, _ := newSession(t)
		s.Logout(context.Background())
		assert.Equal(t, session.State{}, s.Snapshot())
	})
}

func TestSession_CheckAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("Нет токена", func(t *testing.T) {
		s, _, _ := newSession(t)
		assert.False(t, s.CheckAuth(ctx))
	})

	t.Run("Уже подтвержден", func(t *testing.T) {
		s, _, _ := loggedIn(t)
		assert.True(t, s.CheckAuth(ctx))
	})

	t.Run("Токен принят", func(t *testing.T) {
		s, client, _ := loggedIn(t)
		s.SetUser(nil)
		client.On("GetProfile", mock.Anything).Return(profile, nil).Once()

		assert.True(t, s.CheckAuth(ctx))
		st := s.Snapshot()
		assert.True(t, st.IsAuthenticated)
		assert.False(t, st.Loading)
		assert.Equal(t, profile, st.User)
	})

	t.Run("Токен обновлен после 401", func(t *testing.T) {
		s, client, store := loggedIn(t)
		s.SetUser(nil)
		client.On("GetProfile", mock.Anything).Return(nil, unauthorized).Once()
		client.On("Refresh", mock.Anything, "refresh-1").Return(rotated, nil).Once()
		client.On("GetProfile", mock.Anything).Return(profile, nil).Once()

		assert.True(t, s.CheckAuth(ctx))
		st := s.Snapshot()
		assert.Equal(t, "access-2", st.Token)
		assert.Equal(t, "refresh-2", st.RefreshToken)
		assert.Equal(t, "access-2", client.Token())

		p, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "refresh-2", p.RefreshToken)
	})

	t.Run("Обновление не удалось", func(t *testing.T) {
		s, client, store := loggedIn(t)
		s.SetUser(nil)
		client.On("GetProfile", mock.Anything).Return(nil, unauthorized).Once()
		client.On("Refresh", mock.Anything, "refresh-1").
			Return(nil, &api.APIError{Status: http.StatusUnauthorized, Message: "invalid refresh token"}).Once()
		client.On("Logout", mock.Anything).Return(unauthorized).Once()

		assert.False(t, s.CheckAuth(ctx))
		assert.Equal(t, session.State{}, s.Snapshot())
		p, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("Другая ошибка ведет к выходу", func(t *testing.T) {
		s, client, _ := loggedIn(t)
		s.SetUser(nil)
		client.On("GetProfile", mock.Anything).
			Return(nil, &api.APIError{Status: http.StatusNotFound, Message: "user not found"}).Once()
		client.On("Logout", mock.Anything).Return(nil).Once()

		assert.False(t, s.CheckAuth(ctx))
		assert.False(t, s.Snapshot().IsAuthenticated)
	})
}

func TestSession_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Пустое хранилище", func(t *testing.T) {
		s, _, _ := newSession(t)
		assert.False(t, s.Initialize(ctx))
	})

	t.Run("Восстановление и проверка", func(t *testing.T) {
		client := &mocks.Client{}
		defer client.AssertExpectations(t)
		store := &session.MemoryStorage{}
		require.NoError(t, store.Save(session.Persisted{
			IsAuthenticated: true,
			User:            &models.UserProfile{ID: 1, Username: "old-name"},
			Token:           "access-1",
			RefreshToken:    "refresh-1",
		}))
		client.On("GetProfile", mock.Anything).Return(profile, nil).Once()

		s := session.New(client, store, nil)
		assert.True(t, s.Initialize(ctx))
		assert.Equal(t, "access-1", client.Token())
		st := s.Snapshot()
		assert.True(t, st.IsAuthenticated)
		assert.Equal(t, "alice", st.User.Username)
	})
}

func TestSession_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Нет refresh токена", func(t *testing.T) {
		s, _, _ := newSession(t)
		assert.ErrorIs(t, s.RefreshToken(ctx), session.ErrNoRefreshToken)
	})

	t.Run("Ротация", func(t *testing.T) {
		s, client, _ := loggedIn(t)
		client.On("Refresh", mock.Anything, "refresh-1").Return(rotated, nil).Once()

		require.NoError(t, s.RefreshToken(ctx))
		assert.Equal(t, "refresh-2", s.Snapshot().RefreshToken)
	})
}

func TestSession_Guard(t *testing.T) {
	ctx := context.Background()

	t.Run("Без входа", func(t *testing.T) {
		s, _, _ := newSession(t)
		assert.Equal(t, session.RedirectToLogin, s.Guard(ctx, "/dashboard"))
	})

	t.Run("После входа", func(t *testing.T) {
		s, _, _ := loggedIn(t)
		assert.Equal(t, session.Allow, s.Guard(ctx, "/dashboard"))
		assert.Equal(t, session.Allow, s.Guard(ctx, "/dashboard"))
		assert.Equal(t, session.Allow, s.Guard(ctx, "/profile"))
	})

	t.Run("Строковое представление", func(t *testing.T) {
		assert.Equal(t, "allow", session.Allow.String())
		assert.Equal(t, "redirect_to_login", session.RedirectToLogin.String())
		assert.Equal(t, "pending", session.Pending.String())
	})
}

func TestSession_UserEdits(t *testing.T) {
	t.Run("UpdateUser без пользователя", func(t *testing.T) {
		s, _, _ := newSession(t)
		name := "bob"
		assert.False(t, s.UpdateUser(session.UserUpdate{Username: &name}))
	})

	t.Run("UpdateUser меняет поля локально", func(t *testing.T) {
		s, _, store := loggedIn(t)
		name, phone := "alice2", "+100"
		assert.True(t, s.UpdateUser(session.UserUpdate{Username: &name, Phone: &phone}))

		st := s.Snapshot()
		assert.Equal(t, "alice2", st.User.Username)
		require.NotNil(t, st.User.Phone)
		assert.Equal(t, "+100", *st.User.Phone)
		assert.Nil(t, st.User.Email)

		p, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "alice2", p.User.Username)
	})

	t.Run("Снимок не связан с состоянием", func(t *testing.T) {
		s, _, _ := loggedIn(t)
		st := s.Snapshot()
		st.User.Username = "mallory"
		assert.Equal(t, "alice", s.Snapshot().User.Username)
	})

	t.Run("SetUser nil снимает признак входа", func(t *testing.T) {
		s, _, _ := loggedIn(t)
		s.SetUser(nil)
		st := s.Snapshot()
		assert.False(t, st.IsAuthenticated)
		assert.Equal(t, "access-1", st.Token)
	})

	t.Run("ClearError", func(t *testing.T) {
		s, client, _ := newSession(t)
		client.On("Login", mock.Anything, "alice", "x").Return(nil, unauthorized).Once()
		_ = s.Login(context.Background(), "alice", "x")
		require.NotEmpty(t, s.Snapshot().Error)

		s.ClearError()
		assert.Empty(t, s.Snapshot().Error)
	})
}
