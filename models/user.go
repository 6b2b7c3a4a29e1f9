package models

import "time"

// Статусы учетной записи пользователя.
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// User представляет запись пользователя в таблице users.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
type User struct {
	ID         int64      `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Password   string     `db:"password" json:"-"` // Всегда bcrypt-хеш, наружу не отдаем
	Email      *string    `db:"email" json:"email,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Status     int        `db:"status" json:"status"`
	LoginTime  *time.Time `db:"login_time" json:"login_time,omitempty"`
	LogoutTime *time.Time `db:"logout_time" json:"logout_time,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive сообщает, может ли учетная запись входить в систему и обновлять токены.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Public возвращает поля, которые безопасно отдавать клиенту (без хеша пароля).
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Status:   u.Status,
	}
}

// Profile возвращает поля, отдаваемые эндпоинтом профиля.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		LoginTime: u.LoginTime,
		CreatedAt: u.CreatedAt,
		Status:    u.Status,
	}
}

// PublicUser - снимок пользователя, вкладываемый в ответ с токенами.
type PublicUser struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Status   int     `json:"status"`
}

// UserProfile - данные ответа GET /auth/profile.
type UserProfile struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	LoginTime *time.Time `json:"login_time,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Status    int        `json:"status"`
}
