// Package mocks содержит testify-моки интерфейсов сервера.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/QiPanTanYi/banyan/models"
	"github.com/QiPanTanYi/banyan/server/internal/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository - мок repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *UserRepository) GetActiveUserByID(ctx context.Context, id int64) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *UserRepository) FindActiveByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return m.user(m.Called(ctx, identifier))
}

func (m *UserRepository) UpdateLoginTime(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *UserRepository) UpdateLogoutTime(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *UserRepository) user(args mock.Arguments) (*models.User, error) {
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
