package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/QiPanTanYi/banyan/models"
)

// memoryUserRepository хранит пользователей в памяти процесса.
// Используется драйвером "memory" для локального запуска и в сквозных тестах.
type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
	now    func() time.Time
}

// NewMemoryUserRepository создает пустое in-memory хранилище пользователей.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users: make(map[int64]models.User),
		now:   time.Now,
	}
}

func (r *memoryUserRepository) CreateUser(_ context.Context, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return 0, ErrUsernameTaken
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return 0, ErrEmailTaken
		}
	}

	r.nextID++
	now := r.now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(*user)
	return user.ID, nil
}

func (r *memoryUserRepository) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memoryUserRepository) GetActiveUserByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id && u.IsActive() })
}

func (r *memoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *memoryUserRepository) FindActiveByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		if !u.IsActive() {
			return false
		}
		return u.Username == identifier ||
			(u.Email != nil && *u.Email == identifier) ||
			(u.Phone != nil && *u.Phone == identifier)
	})
}

func (r *memoryUserRepository) UpdateLoginTime(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(u *models.User) { u.LoginTime = &at })
}

func (r *memoryUserRepository) UpdateLogoutTime(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(u *models.User) { u.LogoutTime = &at })
}

// SetStatus меняет статус пользователя. В HTTP API такой операции нет,
// метод нужен для администрирования локального стенда и тестов.
func (r *memoryUserRepository) SetStatus(id int64, status int) error {
	return r.update(id, func(u *models.User) { u.Status = status })
}

// find возвращает копию первого подходящего пользователя в порядке возрастания id.
func (r *memoryUserRepository) find(match func(u *models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		u := r.users[id]
		if match(&u) {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) update(id int64, apply func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	apply(&u)
	u.UpdatedAt = r.now()
	r.users[id] = cloneUser(u)
	return nil
}

// cloneUser копирует указатели, чтобы вызывающий код не мог изменить хранилище.
func cloneUser(u models.User) models.User {
	c := u
	c.Email = cloneString(u.Email)
	c.Phone = cloneString(u.Phone)
	c.LoginTime = cloneTime(u.LoginTime)
	c.LogoutTime = cloneTime(u.LogoutTime)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
