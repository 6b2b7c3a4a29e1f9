// Package session хранит клиентскую сессию Banyan ERP: токены, текущего пользователя
// и флаги загрузки и ошибки. Сессия принадлежит корню UI и передается ему явно.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/client/internal/api"
	"github.com/QiPanTanYi/banyan/models"
)

// logoutNotifyTimeout ограничивает уведомление сервера о выходе.
const logoutNotifyTimeout = 5 * time.Second

// ErrNoRefreshToken возвращается RefreshToken, если refresh токена нет.
var ErrNoRefreshToken = errors.New("refresh токен отсутствует")

// State - снимок состояния сессии.
type State struct {
	IsAuthenticated bool
	User            *models.UserProfile
	Token           string
	RefreshToken    string
	Loading         bool
	Error           string
}

// UserUpdate - локальное изменение профиля. nil-поля не меняются.
// Сервер такой операции не поддерживает, изменения живут только на клиенте.
type UserUpdate struct {
	Username *string
	Email    *string
	Phone    *string
}

// Decision - решение охранника маршрутов.
type Decision int

const (
	// Allow - экран можно показать.
	Allow Decision = iota
	// RedirectToLogin - пользователь не вошел, нужен экран входа.
	RedirectToLogin
	// Pending - идет проверка, решение пока не принято.
	Pending
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Session - клиентская сессия. Методы безопасны для конкурентного вызова,
// сетевые запросы выполняются без удержания мьютекса.
type Session struct {
	client api.Client
	store  Storage
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	checkedPath string
}

// New создает сессию. Состояние из хранилища загружается в Initialize.
func New(client api.Client, store Storage, logger *zap.Logger) *Session {
	if store == nil {
		store = &MemoryStorage{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		client: client,
		store:  store,
		logger: logger.With(zap.String("component", "session")),
	}
}

// Snapshot возвращает копию текущего состояния.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.User = cloneProfile(s.state.User)
	return st
}

// Initialize восстанавливает сохраненную сессию. Если был сохранен токен,
// он проверяется через CheckAuth.
func (s *Session) Initialize(ctx context.Context) bool {
	p, err := s.store.Load()
	if err != nil {
		s.logger.Warn("Не удалось загрузить сохраненную сессию", zap.Error(err))
	}
	if p == nil || p.Token == "" {
		s.logger.Debug("Сохраненной сессии нет")
		return false
	}

	s.mu.Lock()
	s.state = State{
		// Восстановленная сессия считается непроверенной до CheckAuth
		User:         cloneProfile(p.User),
		Token:        p.Token,
		RefreshToken: p.RefreshToken,
	}
	s.mu.Unlock()
	s.client.SetAuthToken(p.Token)

	s.logger.Info("Сессия восстановлена, проверяем токен")
	return s.CheckAuth(ctx)
}

// Login выполняет вход по имени пользователя, email или телефону.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.begin()
	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.fail(err)
		return err
	}
	s.authenticated(resp)
	s.logger.Info("Вход выполнен", zap.Int64("user_id", resp.User.ID))
	return nil
}

// Register регистрирует пользователя и сразу открывает сессию.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) error {
	s.begin()
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.fail(err)
		return err
	}
	s.authenticated(resp)
	s.logger.Info("Регистрация выполнена", zap.Int64("user_id", resp.User.ID))
	return nil
}

// Logout очищает локальную сессию. Сервер уведомляется по возможности,
// ошибка уведомления не мешает выходу.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	hadToken := s.state.Token != ""
	s.mu.Unlock()

	if hadToken {
		notifyCtx, cancel := context.WithTimeout(ctx, logoutNotifyTimeout)
		if err := s.client.Logout(notifyCtx); err != nil {
			s.logger.Debug("Сервер не уведомлен о выходе", zap.Error(err))
		}
		cancel()
	}
	s.clear()
	s.logger.Info("Выход выполнен")
}

// CheckAuth проверяет токен запросом профиля. Если пользователь уже
// подтвержден и загрузка не идет, повторная проверка не выполняется.
// При 401 делается одна попытка обновить токены, затем выход.
func (s *Session) CheckAuth(ctx context.Context) bool {
	s.mu.Lock()
	switch {
	case s.state.IsAuthenticated && s.state.User != nil && !s.state.Loading:
		s.mu.Unlock()
		return true
	case s.state.Loading:
		authenticated := s.state.IsAuthenticated
		s.mu.Unlock()
		return authenticated
	case s.state.Token == "":
		s.state.IsAuthenticated = false
		s.mu.Unlock()
		return false
	}
	s.state.Loading = true
	s.mu.Unlock()

	profile, err := s.client.GetProfile(ctx)
	if errors.Is(err, api.ErrAuthorization) {
		s.logger.Info("Токен отклонен, пробуем обновить")
		if refreshErr := s.refresh(ctx); refreshErr == nil {
			profile, err = s.client.GetProfile(ctx)
		} else {
			err = refreshErr
		}
	}
	if err != nil {
		s.logger.Info("Проверка сессии не пройдена, выходим", zap.Error(err))
		s.Logout(ctx)
		return false
	}

	s.mu.Lock()
	s.state.User = cloneProfile(profile)
	s.state.IsAuthenticated = true
	s.state.Loading = false
	s.mu.Unlock()
	s.persist()
	return true
}

// RefreshToken обменивает сохраненный refresh токен на новую пару.
func (s *Session) RefreshToken(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Guard решает, можно ли показать защищенный экран path.
func (s *Session) Guard(ctx context.Context, path string) Decision {
	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return Pending
	}
	if s.checkedPath == path && s.state.IsAuthenticated {
		s.mu.Unlock()
		return Allow
	}
	s.mu.Unlock()

	ok := s.CheckAuth(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.checkedPath = path
		return Allow
	}
	if s.state.Loading {
		return Pending
	}
	return RedirectToLogin
}

// ClearError сбрасывает сообщение об ошибке (вызывается при вводе пользователя).
func (s *Session) ClearError() {
	s.mu.Lock()
	s.state.Error = ""
	s.mu.Unlock()
}

// SetUser заменяет текущего пользователя. nil означает отсутствие входа.
func (s *Session) SetUser(user *models.UserProfile) {
	s.mu.Lock()
	s.state.User = cloneProfile(user)
	s.state.IsAuthenticated = user != nil
	s.mu.Unlock()
	s.persist()
}

// UpdateUser меняет поля текущего пользователя только локально.
func (s *Session) UpdateUser(upd UserUpdate) bool {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return false
	}
	if upd.Username != nil {
		s.state.User.Username = *upd.Username
	}
	if upd.Email != nil {
		s.state.User.Email = cloneString(upd.Email)
	}
	if upd.Phone != nil {
		s.state.User.Phone = cloneString(upd.Phone)
	}
	s.mu.Unlock()
	s.persist()
	return true
}

func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.state.RefreshToken
	s.mu.Unlock()
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Token = resp.AccessToken
	s.state.RefreshToken = resp.RefreshToken
	if resp.User.ID != 0 {
		s.state.User = mergePublic(s.state.User, resp.User)
	}
	s.mu.Unlock()
	s.client.SetAuthToken(resp.AccessToken)
	return nil
}

func (s *Session) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = State{Error: errorMessage(err)}
	s.checkedPath = ""
	s.mu.Unlock()
	s.client.SetAuthToken("")
	if clearErr := s.store.Clear(); clearErr != nil {
		s.logger.Warn("Не удалось очистить сохраненную сессию", zap.Error(clearErr))
	}
}

func (s *Session) authenticated(resp *models.AuthResponse) {
	s.mu.Lock()
	s.state = State{
		IsAuthenticated: true,
		User:            mergePublic(nil, resp.User),
		Token:           resp.AccessToken,
		RefreshToken:    resp.RefreshToken,
	}
	s.checkedPath = ""
	s.mu.Unlock()
	s.client.SetAuthToken(resp.AccessToken)
	s.persist()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.state = State{}
	s.checkedPath = ""
	s.mu.Unlock()
	s.client.SetAuthToken("")
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("Не удалось очистить сохраненную сессию", zap.Error(err))
	}
}

func (s *Session) persist() {
	s.mu.Lock()
	p := Persisted{
		IsAuthenticated: s.state.IsAuthenticated,
		User:            cloneProfile(s.state.User),
		Token:           s.state.Token,
		RefreshToken:    s.state.RefreshToken,
	}
	s.mu.Unlock()

	if err := s.store.Save(p); err != nil {
		s.logger.Warn("Не удалось сохранить сессию", zap.Error(err))
	}
}

// errorMessage возвращает текст для показа пользователю.
func errorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// mergePublic переносит поля ответа с токенами в профиль, сохраняя известные даты.
func mergePublic(current *models.UserProfile, u models.PublicUser) *models.UserProfile {
	p := &models.UserProfile{}
	if current != nil && current.ID == u.ID {
		p = cloneProfile(current)
	}
	p.ID = u.ID
	p.Username = u.Username
	p.Email = cloneString(u.Email)
	p.Phone = cloneString(u.Phone)
	p.Status = u.Status
	return p
}

func cloneProfile(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Email = cloneString(p.Email)
	c.Phone = cloneString(p.Phone)
	if p.LoginTime != nil {
		t := *p.LoginTime
		c.LoginTime = &t
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
