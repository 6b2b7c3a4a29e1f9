package models

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest представляет тело запроса на вход.
// Username может содержать имя пользователя, email или номер телефона.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest представляет тело запроса на обновление токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse возвращается при регистрации, входе и обновлении токенов.
type AuthResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"` // Время жизни access token в секундах
	User         PublicUser `json:"user"`
}

// LogoutResponse - данные ответа POST /auth/logout.
type LogoutResponse struct {
	Message string `json:"message"`
}
