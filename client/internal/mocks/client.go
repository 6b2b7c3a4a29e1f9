// Package mocks содержит моки клиентских зависимостей для тестов.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/QiPanTanYi/banyan/client/internal/api"
	"github.com/QiPanTanYi/banyan/models"
)

var _ api.Client = (*Client)(nil)

// Client - мок api.Client. SetAuthToken не проверяется ожиданиями,
// последний установленный токен доступен через Token.
type Client struct {
	mock.Mock

	mu    sync.Mutex
	token string
}

func (m *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*models.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	if r := args.Get(0); r != nil {
		return r.(*models.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*models.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	if r := args.Get(0); r != nil {
		return r.(*models.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Client) SetAuthToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

// Token возвращает последний токен, переданный в SetAuthToken.
func (m *Client) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
