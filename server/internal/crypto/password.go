// Package crypto хеширует и проверяет пароли пользователей с помощью bcrypt.
package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost - фиксированная стоимость bcrypt для паролей пользователей.
const DefaultCost = 10

// ErrPasswordTooLong возвращается для паролей длиннее 72 байт, которые bcrypt не принимает.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword возвращает соленый bcrypt-хеш пароля.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(hash), nil
}

// ComparePassword сравнивает пароль с хешем за постоянное время.
// Никогда не возвращает ошибку: любое несовпадение или битый хеш дают false.
func ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
