// Package validation проверяет тела запросов до вызова сервиса аутентификации.
// Каждому эндпоинту соответствует своя функция, возвращающая Result.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/QiPanTanYi/banyan/models"
)

// Result - результат проверки: пустой список ошибок означает успех.
type Result struct {
	Errors []models.FieldError
}

// OK сообщает, прошла ли проверка.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Message возвращает сообщение первой ошибки.
func (r Result) Message() string {
	if r.OK() {
		return ""
	}
	return r.Errors[0].Message
}

// rule - проверка одного поля тегом validator.
type rule struct {
	field    string
	value    any
	tag      string
	messages map[string]string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRegister проверяет запрос регистрации.
func ValidateRegister(req models.RegisterRequest) Result {
	return check(
		rule{
			field: "username", value: req.Username, tag: "required,min=3,max=50",
			messages: map[string]string{
				"required": "username is required",
				"min":      "username must be between 3 and 50 characters",
				"max":      "username must be between 3 and 50 characters",
			},
		},
		rule{
			field: "password", value: req.Password, tag: "required,min=6,max=20",
			messages: map[string]string{
				"required": "password is required",
				"min":      "password must be between 6 and 20 characters",
				"max":      "password must be between 6 and 20 characters",
			},
		},
		rule{
			field: "email", value: deref(req.Email), tag: "omitempty,max=100,email",
			messages: map[string]string{
				"max":   "email must be at most 100 characters",
				"email": "email format is invalid",
			},
		},
		rule{
			field: "phone", value: deref(req.Phone), tag: "omitempty,max=20",
			messages: map[string]string{
				"max": "phone must be at most 20 characters",
			},
		},
	)
}

// ValidateLogin проверяет запрос входа.
func ValidateLogin(req models.LoginRequest) Result {
	return check(
		rule{
			field: "username", value: req.Username, tag: "required",
			messages: map[string]string{"required": "username is required"},
		},
		rule{
			field: "password", value: req.Password, tag: "required",
			messages: map[string]string{"required": "password is required"},
		},
	)
}

// ValidateRefresh проверяет запрос обновления токенов.
func ValidateRefresh(req models.RefreshRequest) Result {
	return check(rule{
		field: "refresh_token", value: req.RefreshToken, tag: "required",
		messages: map[string]string{"required": "refresh_token is required"},
	})
}

func check(rules ...rule) Result {
	var res Result
	for _, r := range rules {
		err := validate.Var(r.value, r.tag)
		if err == nil {
			continue
		}

		msg := fmt.Sprintf("%s is invalid", r.field)
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			if m, ok := r.messages[fieldErrs[0].Tag()]; ok {
				msg = m
			}
		}
		res.Errors = append(res.Errors, models.FieldError{Field: r.field, Message: msg})
	}
	return res
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
