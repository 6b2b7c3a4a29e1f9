package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/client/internal/session"
)

// Состояния (экраны) приложения.
type screenState int

const (
	welcomeScreen   screenState = iota // Приветственный экран
	loginScreen                        // Экран входа
	registerScreen                     // Экран регистрации
	dashboardScreen                    // Главная страница (защищена)
	profileScreen                      // Профиль пользователя (защищен)
	profileEditScreen                  // Локальное редактирование профиля (защищено)
)

func (s screenState) String() string {
	switch s {
	case welcomeScreen:
		return "welcome"
	case loginScreen:
		return "login"
	case registerScreen:
		return "register"
	case dashboardScreen:
		return "dashboard"
	case profileScreen:
		return "profile"
	case profileEditScreen:
		return "profile_edit"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// path возвращает адрес экрана для охранника маршрутов.
func (s screenState) path() string {
	switch s {
	case loginScreen:
		return "/login"
	case registerScreen:
		return "/register"
	case dashboardScreen:
		return "/dashboard"
	case profileScreen, profileEditScreen:
		return "/profile"
	default:
		return "/"
	}
}

// protected сообщает, требует ли экран входа.
func (s screenState) protected() bool {
	return s == dashboardScreen || s == profileScreen || s == profileEditScreen
}

// Поля формы регистрации.
const (
	registerFieldUsername = iota
	registerFieldPassword
	registerFieldEmail
	registerFieldPhone
	numRegisterFields
)

// Поля формы входа.
const (
	loginFieldIdentifier = iota
	loginFieldPassword
	numLoginFields
)

// Поля формы редактирования профиля.
const (
	profileFieldUsername = iota
	profileFieldEmail
	profileFieldPhone
	numProfileFields
)

// model представляет состояние TUI приложения.
type model struct {
	ctx     context.Context
	session *session.Session
	logger  *zap.Logger

	state         screenState
	pendingTarget screenState // Экран, который откроется после входа
	checking      bool        // Идет проверка сессии

	loginInputs   []textinput.Model
	registerInput []textinput.Model
	profileInputs []textinput.Model
	focusedField  int

	statusMessage string
	width         int
	height        int
	docStyle      lipgloss.Style
}

func newModel(ctx context.Context, sess *session.Session, logger *zap.Logger) *model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &model{
		ctx:           ctx,
		session:       sess,
		logger:        logger.With(zap.String("component", "tui")),
		state:         welcomeScreen,
		pendingTarget: dashboardScreen,
		docStyle:      docStyle,
	}

	m.loginInputs = make([]textinput.Model, numLoginFields)
	m.loginInputs[loginFieldIdentifier] = newInput("Имя пользователя, email или телефон", false)
	m.loginInputs[loginFieldPassword] = newInput("Пароль", true)

	m.registerInput = make([]textinput.Model, numRegisterFields)
	m.registerInput[registerFieldUsername] = newInput("Имя пользователя (3-50 символов)", false)
	m.registerInput[registerFieldPassword] = newInput("Пароль (6-20 символов)", true)
	m.registerInput[registerFieldEmail] = newInput("Email (необязательно)", false)
	m.registerInput[registerFieldPhone] = newInput("Телефон (необязательно)", false)

	m.profileInputs = make([]textinput.Model, numProfileFields)
	m.profileInputs[profileFieldUsername] = newInput("Имя пользователя", false)
	m.profileInputs[profileFieldEmail] = newInput("Email", false)
	m.profileInputs[profileFieldPhone] = newInput("Телефон", false)

	return m
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = inputCharLimit
	ti.Width = defaultInputWidth
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	return ti
}
